// Package worker locates the worker executable on disk.
//
// Discovery searches in the following order:
//  1. Explicit path in Config.WorkerPath (if provided)
//  2. The BOTWRIGHT_WORKER environment variable
//  3. System PATH
//  4. Common installation directories (/usr/local/bin, /usr/bin, ~/.local/bin)
package worker
