// Package main реализует консольный клиент витрины garioush.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boula1997/garioush/internal/api"
	"github.com/boula1997/garioush/internal/checkout"
	"github.com/boula1997/garioush/internal/config"
	"github.com/boula1997/garioush/internal/session"
	"github.com/boula1997/garioush/internal/storage"
	"github.com/boula1997/garioush/internal/store"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "garioush",
	Short: "Client for the garioush auto parts storefront",
	Long: `Command-line client for the garioush auto parts storefront.

Session state and preferences are kept in a local state file, so a login
survives restarts until an explicit logout or a server-side rejection.

Examples:
  garioush login demo@garioush.app demo1234
  garioush categories
  garioush cart add 105
  garioush checkout --address "street 1" --mobile +201234567890 --payment wallet`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// application связывает все клиентские слои для команд CLI.
type application struct {
	cfg     *config.Config
	logger  *zap.Logger
	kv      *storage.Store
	client  *api.Client
	session *session.Manager
	cart    *store.CartStore
	orders  *store.OrdersStore
	profile *store.ProfileStore
	flow    *checkout.Flow
}

var app *application

// getApp лениво собирает приложение: конфигурация, локальное хранилище,
// HTTP-клиент, менеджер сессии и хранилища ресурсов.
func getApp() (*application, error) {
	if app != nil {
		return app, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := zap.NewNop()
	if verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	kv, err := storage.Open(cfg.StatePath)
	if err != nil {
		return nil, err
	}

	// Сохранённая локаль имеет приоритет над конфигурацией.
	locale := cfg.Locale
	if saved, err := kv.Get(storage.KeyLocale); err == nil {
		locale = saved
	}

	client := api.NewClient(cfg.APIAddress, locale, cfg.RequestTimeout, logger)

	sess := session.NewManager(kv, client, logger)
	sess.Load()
	sess.OnAuthRedirect(func() {
		fmt.Fprintln(os.Stderr, "Session expired, please login again")
	})

	cart := store.NewCartStore(client, sess, logger)
	orders := store.NewOrdersStore(client, sess, logger, 5)
	profile := store.NewProfileStore(client, sess, logger)

	sess.OnInvalidate(cart.Clear)
	sess.OnInvalidate(orders.Clear)
	sess.OnInvalidate(profile.Clear)

	app = &application{
		cfg:     cfg,
		logger:  logger,
		kv:      kv,
		client:  client,
		session: sess,
		cart:    cart,
		orders:  orders,
		profile: profile,
		flow:    checkout.NewFlow(client, cart, profile, orders, logger),
	}
	return app, nil
}

// resolve извлекает данные из состояния хранилища после синхронной операции.
func resolve[T any](st store.State[T]) (*T, error) {
	switch st.Status {
	case store.StatusError:
		if errors.Is(st.Err, session.ErrNoSession) {
			return nil, errors.New("not logged in, run 'garioush login' first")
		}
		return nil, st.Err
	case store.StatusLoaded:
		return st.Data, nil
	default:
		return nil, fmt.Errorf("resource is not loaded: %s", st.Status)
	}
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	err := rootCmd.Execute()

	if app != nil {
		app.logger.Sync()
		app.kv.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
