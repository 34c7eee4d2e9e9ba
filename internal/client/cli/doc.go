// Package cli implements gifctl, the operator command line for a ChipsGIFs
// deployment.
//
// Commands
//
//	count <gif>             print the stored download count
//	bump <gif>              increment the download count
//	fetch <gif> [dir]       download a GIF through /api/deliver
//	ping                    check the server's liveness endpoint
//	publish <file> [name]   upload a GIF into the object store
//	indexnow                submit the configured site URLs to IndexNow
//	indexnow-key            print a fresh IndexNow key
//
// App.Run dispatches one command and returns; there is no REPL.
package cli
