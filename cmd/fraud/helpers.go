package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/viper"

	"github.com/Veraticus/fraud-desk/internal/common"
	"github.com/Veraticus/fraud-desk/internal/config"
	"github.com/Veraticus/fraud-desk/internal/storage"
)

const defaultDatabasePathHint = "~/.local/share/fraud-desk/fraud_cases.db"

// openStorage opens and initializes the case database named by configuration.
// Every command goes through here, so the schema and seed data always exist
// before any case operation runs.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, func(), error) {
	dbPath := config.DatabasePath(viper.GetString("database.path"))

	store, err := storage.NewSQLiteStorage(dbPath,
		storage.WithStrictStatus(viper.GetBool("cases.strict_status")),
	)
	if err != nil {
		return nil, nil, common.NewUserError("could not open case database", err)
	}

	if err := store.Initialize(ctx); err != nil {
		_ = store.Close()
		return nil, nil, common.NewUserError("could not initialize case database", err)
	}

	slog.Debug("Opened case database", "path", store.Path())

	cleanup := func() {
		if err := store.Close(); err != nil {
			common.LogError(err, "failed to close case database", common.Fields{"path": store.Path()})
		}
	}
	return store, cleanup, nil
}

func parseCaseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, common.NewUserError(fmt.Sprintf("invalid case id %q", arg), err)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
