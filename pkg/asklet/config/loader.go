package config

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cognicore/asklet/pkg/asklet/oracle"
	"github.com/cognicore/asklet/pkg/asklet/oracle/domain"
	"github.com/cognicore/asklet/pkg/asklet/oracle/matrix"
	"github.com/cognicore/asklet/pkg/asklet/oracle/shell"
	"github.com/cognicore/asklet/pkg/asklet/session"
	"github.com/cognicore/asklet/pkg/asklet/store"
	"github.com/cognicore/asklet/pkg/asklet/store/sqlite"
)

// Loader builds the oracle a Config describes
type Loader struct {
	Config Config
	// In and Out carry the console for the shell source.
	In     io.Reader
	Out    io.Writer
	Logger *zap.Logger
	// ClearSession discards a saved shell identity instead of reusing it.
	ClearSession bool
}

// Components holds the constructed oracle and whatever must be closed with it
type Components struct {
	Oracle *oracle.Tracked
	Store  store.Domain
	Shell  *shell.Oracle
}

// Close releases the backing store, if any.
func (c *Components) Close() error {
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}

// Load validates the configuration and constructs the oracle
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	if err := l.Config.Validate(); err != nil {
		return nil, err
	}
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rng := oracle.NewRand(l.Config.Seed)
	comp := &Components{}

	var o oracle.Oracle
	switch l.Config.Source {
	case SourceMatrix:
		m, err := matrix.Load(l.Config.Matrix, matrix.Options{Logger: log, Rand: rng})
		if err != nil {
			return nil, err
		}
		o = m

	case SourceDomain:
		st, err := sqlite.OpenSQLite(ctx, l.Config.Database, l.Config.Scale)
		if err != nil {
			return nil, fmt.Errorf("open domain: %w", err)
		}
		d, err := domain.New(ctx, st, domain.Options{Logger: log, Rand: rng})
		if err != nil {
			st.Close()
			return nil, err
		}
		comp.Store = st
		o = d

	case SourceShell:
		sh, err := shell.Load(shell.Options{
			Session: session.NewFileStore(l.Config.SessionFile),
			In:      l.In,
			Out:     l.Out,
			Scale:   l.Config.Scale,
			Logger:  log,
		}, l.ClearSession)
		if err != nil {
			return nil, err
		}
		comp.Shell = sh
		o = sh
	}

	comp.Oracle = oracle.Track(o, log)
	log.Info("oracle ready", zap.String("source", l.Config.Source))
	return comp, nil
}
