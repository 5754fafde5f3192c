package cli

import (
	"io"

	"github.com/charmbracelet/log"

	"pyvm/internal/config"
	"pyvm/internal/logx"
	"pyvm/internal/paths"
	"pyvm/internal/scan"
	"pyvm/internal/state"
)

// appEnv wires the shared collaborators every command needs.
type appEnv struct {
	Paths    paths.Paths
	Settings config.Settings
	Store    *state.FileStore
	Scanner  *scan.Scanner
	Log      *log.Logger

	logCloser io.Closer
}

func newAppEnv() (*appEnv, error) {
	p, err := paths.Resolve(rootDir)
	if err != nil {
		return nil, err
	}

	settings, err := config.Load(p.SettingsFile)
	if err != nil {
		return nil, err
	}

	store, err := state.NewFileStore(p)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logx.New(p)
	if err != nil {
		// Logging must not block the operation itself.
		logger = logx.Discard()
		closer = nil
	}

	return &appEnv{
		Paths:     p,
		Settings:  settings,
		Store:     store,
		Scanner:   scan.New(settings),
		Log:       logger,
		logCloser: closer,
	}, nil
}

func (e *appEnv) Close() {
	if e.logCloser != nil {
		_ = e.logCloser.Close()
	}
}

// retryStore adapts the file store's read-with-retry path to the Store
// interface for read-only operations, which skip the advisory lock.
type retryStore struct {
	store *state.FileStore
}

func (r retryStore) Load() (state.State, error) {
	return r.store.LoadWithRetry()
}

func (r retryStore) Save(st state.State) error {
	return r.store.Save(st)
}
