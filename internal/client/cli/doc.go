// Package cli provides the interactive gophjournal terminal client.
//
// It wires configuration, the local session store, the gRPC entry store,
// the Gemini annotator and the application state controller, then runs a
// small REPL on top of them. Typical flow: restore the stored session or
// sign in, browse the dashboard, open or create an entry, edit it, ask for
// an AI insight and save.
//
// Commands are grouped by view:
//   - Signed out: register, confirm, login
//   - Dashboard: list, find, new, open, export, logout
//   - Editor: show, title, write, tags, analyze, save, delete, cancel
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
