package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/amholt/bravely/internal/config"
	"github.com/amholt/bravely/internal/models"
	"github.com/amholt/bravely/internal/reconcile"
	"github.com/amholt/bravely/internal/store"
)

// startTimeout bounds how long a command waits for the first snapshot.
const startTimeout = 10 * time.Second

type Context struct {
	Config config.Config
	Logger *zap.Logger
}

// OpenGateway builds and opens the configured gateway.
func (c *Context) OpenGateway() (store.Gateway, error) {
	switch c.Config.Backend {
	case config.BackendJSON:
		g := store.NewFileGateway(c.Config.DocumentPath(), c.Config.Tenant, c.Config.SessionToken, c.Logger)
		if err := g.Open(); err != nil {
			return nil, err
		}
		return g, nil
	default:
		g := store.NewSQLiteGateway(c.Config.DocumentPath(), c.Config.Tenant, c.Config.SessionToken, c.Logger)
		if err := g.Open(); err != nil {
			return nil, err
		}
		return g, nil
	}
}

// StartReconciler opens the gateway and brings the reconciler to its
// first snapshot. Callers must Stop the reconciler and Close the
// gateway.
func (c *Context) StartReconciler() (*reconcile.Reconciler, store.Gateway, error) {
	gw, err := c.OpenGateway()
	if err != nil {
		return nil, nil, err
	}

	r := reconcile.New(gw, c.Config.Debounce, c.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := r.Start(ctx); err != nil {
		gw.Close()
		return nil, nil, err
	}
	return r, gw, nil
}

func parseFeeling(s string) (models.Feeling, error) {
	switch models.Feeling(s) {
	case models.FeelingProud, models.FeelingRelieved, models.FeelingNeutral, models.FeelingStressed:
		return models.Feeling(s), nil
	default:
		return "", fmt.Errorf("invalid feeling %q (proud|relieved|neutral|stressed)", s)
	}
}
