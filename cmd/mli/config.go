package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/franz/music-index/internal/library"
	"github.com/franz/music-index/internal/store"
)

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (MLI_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigInt retrieves an int config value with proper precedence
func GetConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val == 0 {
		return defaultValue
	}
	return val
}

// GetConfigStringSlice retrieves a string slice config value
func GetConfigStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}

// openLibrary opens the configured database together with a catalog over it
func openLibrary() (*store.Store, *library.Catalog, error) {
	dbPath := GetConfigString("db", "mli.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, library.New(db.DB()), nil
}
