package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/chippom/ChipsGIFs/internal/client/indexnow"
	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/filex"
	"github.com/chippom/ChipsGIFs/internal/server/validation"
)

const defaultFetchDir = "downloads"

func gifArg(args []string, usage string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	if err := validation.GifName(args[0]); err != nil {
		return "", err
	}
	return args[0], nil
}

func (a *App) count(ctx context.Context, args []string) error {
	name, err := gifArg(args, "count <gif>")
	if err != nil {
		return err
	}

	n, err := a.api.Count(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d\n", name, n)
	return nil
}

func (a *App) bump(ctx context.Context, args []string) error {
	name, err := gifArg(args, "bump <gif>")
	if err != nil {
		return err
	}

	n, err := a.api.Bump(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d\n", name, n)
	return nil
}

func (a *App) fetch(ctx context.Context, args []string) error {
	name, err := gifArg(args, "fetch <gif> [dir]")
	if err != nil {
		return err
	}

	dirName := defaultFetchDir
	if len(args) > 1 {
		dirName = args[1]
	}
	dir, err := filex.EnsureSubdDir(dirName)
	if err != nil {
		return err
	}

	var n int64
	dst, err := filex.WriteAtomic(dir, name, func(w io.Writer) error {
		var ferr error
		n, ferr = a.api.Fetch(ctx, name, w)
		return ferr
	})
	if err != nil {
		return err
	}

	a.logger.Info(ctx, "fetched", "gif_name", name, "bytes", n, "path", dst)
	fmt.Fprintln(a.out, dst)
	return nil
}

func (a *App) ping(ctx context.Context) error {
	if err := a.api.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

func (a *App) publish(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: publish <file> [name]", ErrUsage)
	}
	path := args[0]

	name := filepath.Base(path)
	if len(args) > 1 {
		name = args[1]
	}
	if err := validation.GifName(name); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = common.DefaultContentType
	}

	pub, err := a.publisher(ctx)
	if err != nil {
		return err
	}
	if err := pub.Put(ctx, name, f, fi.Size(), contentType); err != nil {
		return fmt.Errorf("publish %s: %w", name, err)
	}

	a.logger.Info(ctx, "published", "gif_name", name, "bytes", fi.Size(), "bucket", a.config.S3Bucket)
	fmt.Fprintf(a.out, "published %s (%d bytes)\n", name, fi.Size())
	return nil
}

func (a *App) submitIndexNow(ctx context.Context) error {
	res, err := a.indexnow.Submit(ctx, a.config.SiteURLs)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}

	for _, r := range res {
		if !r.OK {
			return ErrIndexNowFailed
		}
	}
	return nil
}

func (a *App) indexNowKey() error {
	key, err := indexnow.NewKey()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, key)
	return nil
}
