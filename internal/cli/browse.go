package cli

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/justyntemme/arbor/internal/config"
	"github.com/justyntemme/arbor/internal/explorer"
	"github.com/justyntemme/arbor/internal/fs"
	"github.com/justyntemme/arbor/internal/render"
	"github.com/justyntemme/arbor/internal/store"
	"github.com/justyntemme/arbor/internal/watch"
)

// settingShowHidden is the store settings key for hidden-file visibility.
const settingShowHidden = "show_hidden"

// browse runs the interactive explorer session over rootPath.
func browse(rootPath string) error {
	mgr := config.NewManager()
	if err := mgr.Load(); err != nil {
		log.Printf("config load failed, using defaults: %v", err)
	}
	if perr := mgr.ParseError(); perr != nil {
		color.Yellow("config file is invalid, using defaults: %v", perr)
	}
	cfg := mgr.Get()

	svc, err := fs.New(rootPath)
	if err != nil {
		return err
	}

	exp := explorer.New(svc)
	defer exp.Close()

	db, dbOpen := openStore(cfg)
	if dbOpen {
		defer db.Close()
		go db.Start()
		if cfg.Explorer.RestoreSession {
			restoreSession(exp, db, svc.Root())
		}
		// A persisted visibility choice overrides the config default.
		if v, ok := fetchSettings(db)[settingShowHidden]; ok {
			cfg.Explorer.ShowHidden = v == "true"
		}
	}
	if flagHidden {
		cfg.Explorer.ShowHidden = true
	}

	var w *watch.Watcher
	if cfg.Watcher.Enabled && !flagNoWatch {
		w, err = watch.New()
		if err != nil {
			log.Printf("watcher unavailable: %v", err)
			w = nil
		} else {
			defer w.Close()
			go func() {
				for range w.Events() {
					exp.RefreshDebounced(mgr.Debounce())
				}
			}()
		}
	}

	var optsMu sync.Mutex
	opts := render.Options{ShowHidden: cfg.Explorer.ShowHidden}

	unsubscribe := exp.Subscribe(func(s explorer.ViewState) {
		optsMu.Lock()
		o := opts
		optsMu.Unlock()
		fmt.Println()
		render.Tree(os.Stdout, s, o)
		if w != nil {
			w.Sync(watchTargets(svc.Root(), s))
		}
		if dbOpen {
			saveSession(db, svc.Root(), s)
		}
	})
	defer unsubscribe()

	exp.Refresh()

	toggleHidden := func() {
		optsMu.Lock()
		opts.ShowHidden = !opts.ShowHidden
		show := opts.ShowHidden
		optsMu.Unlock()
		if dbOpen {
			saveSetting(db, settingShowHidden, strconv.FormatBool(show))
		}
		exp.Refresh()
	}

	return repl(os.Stdin, exp, mgr, cfg, toggleHidden)
}

func openStore(cfg config.Config) (*store.DB, bool) {
	dbPath := cfg.Store.Path
	if flagDB != "" {
		dbPath = flagDB
	}
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}

	db := store.NewDB()
	if err := db.Open(dbPath); err != nil {
		log.Printf("session store unavailable: %v", err)
		return nil, false
	}
	return db, true
}

func restoreSession(exp *explorer.Explorer, db *store.DB, root string) {
	db.RequestChan <- store.Request{Op: store.LoadSession, Session: store.Session{Root: root}}
	select {
	case resp := <-db.ResponseChan:
		if resp.Err == nil && resp.Session != nil {
			exp.SetExpanded(resp.Session.Expanded)
			exp.Select(resp.Session.Selected)
		}
	case <-time.After(2 * time.Second):
	}
}

// fetchSettings reads the persisted host settings, returning nil when the
// store does not answer in time.
func fetchSettings(db *store.DB) map[string]string {
	db.RequestChan <- store.Request{Op: store.FetchSettings}
	select {
	case resp := <-db.ResponseChan:
		if resp.Err == nil {
			return resp.Settings
		}
	case <-time.After(2 * time.Second):
	}
	return nil
}

// saveSetting is fire-and-forget, like saveSession.
func saveSetting(db *store.DB, key, value string) {
	select {
	case db.RequestChan <- store.Request{Op: store.SaveSetting, Key: key, Value: value}:
	default:
	}
}

// saveSession is fire-and-forget: a full request channel just skips one
// save, the next snapshot re-sends the whole state anyway.
func saveSession(db *store.DB, root string, s explorer.ViewState) {
	expanded := make([]string, 0, len(s.Expanded))
	for p := range s.Expanded {
		expanded = append(expanded, p)
	}
	req := store.Request{Op: store.SaveSession, Session: store.Session{
		Root:     root,
		Expanded: expanded,
		Selected: s.SelectedPath,
	}}
	select {
	case db.RequestChan <- req:
	default:
	}
}

// watchTargets maps the expansion set to the absolute directories the
// watcher should track: the root plus every expanded directory.
func watchTargets(root string, s explorer.ViewState) []string {
	targets := []string{root}
	for p := range s.Expanded {
		if p == "" {
			continue
		}
		targets = append(targets, filepath.Join(root, filepath.FromSlash(p)))
	}
	return targets
}

func repl(in io.Reader, exp *explorer.Explorer, mgr *config.Manager, cfg config.Config, toggleHidden func()) error {
	usage()
	scanner := bufio.NewScanner(in)
	fmt.Print("> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			fmt.Print("> ")
			continue
		}

		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "q", "quit", "exit":
			return nil
		case "r", "refresh":
			exp.Refresh()
		case "focus":
			exp.RefreshDebounced(mgr.FocusDebounce())
		case "collapse":
			exp.CollapseAll()
		case "hidden":
			toggleHidden()
		case "x", "expand":
			if len(args) == 1 {
				exp.ToggleExpand(args[0])
			}
		case "s", "select":
			if len(args) == 0 {
				exp.Select("")
			} else {
				exp.Select(args[0])
			}
		case "touch":
			if dir, name, ok := dirAndName(args); ok {
				report(exp.CreateFile(dir, name))
			}
		case "mkdir":
			if dir, name, ok := dirAndName(args); ok {
				report(exp.CreateDir(dir, name))
			}
		case "mv", "rename":
			if len(args) == 2 {
				report(exp.Rename(args[0], args[1]))
			}
		case "rm", "delete":
			if len(args) == 1 {
				if !cfg.Explorer.ConfirmDelete || confirm(scanner, args[0]) {
					report(exp.Delete(args[0]))
				}
			}
		case "open":
			if len(args) == 1 {
				report(exp.OpenExternal(args[0]))
			}
		case "reveal":
			if len(args) == 1 {
				report(exp.Reveal(args[0]))
			}
		case "help":
			usage()
		default:
			color.Yellow("unknown command %q, try help", cmd)
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}

// dirAndName parses "<name>" (root) or "<dir> <name>" forms; "." means
// the root directory.
func dirAndName(args []string) (dir, name string, ok bool) {
	switch len(args) {
	case 1:
		return "", args[0], true
	case 2:
		dir = args[0]
		if dir == "." {
			dir = ""
		}
		return dir, args[1], true
	default:
		return "", "", false
	}
}

func confirm(scanner *bufio.Scanner, target string) bool {
	fmt.Printf("delete %s? [y/N] ", target)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

func report(res explorer.Result) {
	switch {
	case res.Success:
		color.Green("%s", res.Message)
	case res.Err != nil:
		color.Red("%s: %v", res.Message, res.Err)
	default:
		color.Red("%s", res.Message)
	}
}

func usage() {
	fmt.Println(`commands:
  x <path>            expand/collapse a folder
  s [path]            select an entry (no arg clears)
  touch [dir] <name>  create a file
  mkdir [dir] <name>  create a folder
  mv <path> <name>    rename an entry
  rm <path>           move an entry to the trash
  open <path>         open with the system default app
  reveal <path>       show in the system file manager
  collapse            collapse all folders
  hidden              toggle hidden-file visibility
  refresh             re-read the tree
  focus               simulate a window-focus recheck
  help                show this help
  quit                exit`)
}
