/*
 * Davplayer is a music player for WebDAV directories.
 * Copyright (C) 2020 Tero Vierimaa
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package cmd contains command line interface for davplayer.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"tryffel.net/go/davplayer/api/webdav"
	"tryffel.net/go/davplayer/catalog"
	"tryffel.net/go/davplayer/config"
	"tryffel.net/go/davplayer/player"
	"tryffel.net/go/davplayer/server"
	"tryffel.net/go/davplayer/task"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use: config.AppNameLower,
	Long: `Davplayer plays music from a WebDAV directory.

Tracks are listed from configured directory and played one after another through local speaker.
Player is controlled with http api, which also streams player status over websocket.
`,
	Run: func(cmd *cobra.Command, args []string) {
		initConfig()
		a, err := initApplication()
		if err != nil {
			logrus.Fatalf("Failed to initialize application: %v", err)
		}
		a.run()
		if a.logfile != nil {
			_ = a.logfile.Close()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file")
}

func initConfig() {
	// default config dir is ~/.config/davplayer
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := os.UserConfigDir()
		if err != nil {
			logrus.Errorf("cannot determine config directory: %v", err)
			configDir = ""
		} else {
			configDir = path.Join(configDir, config.AppNameLower)
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigFile(path.Join(configDir, config.AppNameLower+".yaml"))
	}

	// env variables
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = config.NewConfigFile(viper.ConfigFileUsed())
			if err != nil {
				logrus.Fatalf("create config file: %v", err)
			}
		} else {
			logrus.Fatalf("read config file: %v", err)
		}
	}

	err := config.ConfigFromViper()
	if err != nil {
		logrus.Fatalf("read config file: %v", err)
	}

	err = config.SaveConfig()
	if err != nil {
		logrus.Fatalf("save config file: %v", err)
	}

	config.ConfigFile = viper.ConfigFileUsed()
}

// initLogging configures logrus. Logs are written to log file if one is configured, else to stderr.
// Returned file must be closed by caller.
func initLogging() (*os.File, error) {
	level, err := logrus.ParseLevel(config.AppConfig.Player.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing log level '%s': %v. Defaulting to INFO.\n",
			config.AppConfig.Player.LogLevel, err)
		level = logrus.InfoLevel
	}

	logrus.SetLevel(level)
	format := &prefixed.TextFormatter{
		ForceColors:      config.AppConfig.Player.LogFile == "",
		DisableColors:    config.AppConfig.Player.LogFile != "",
		ForceFormatting:  true,
		DisableTimestamp: false,
		DisableUppercase: false,
		FullTimestamp:    true,
		TimestampFormat:  "15:04:05.000",
		DisableSorting:   false,
		QuoteEmptyFields: false,
		QuoteCharacter:   "'",
		SpacePadding:     0,
		Once:             sync.Once{},
	}
	logrus.SetFormatter(format)

	if config.AppConfig.Player.LogFile == "" {
		logrus.SetOutput(os.Stderr)
		config.LogFile = ""
		return nil, nil
	}

	file, err := os.OpenFile(config.AppConfig.Player.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %v", err)
	}
	logrus.SetOutput(file)
	config.LogFile = config.AppConfig.Player.LogFile
	return file, nil
}

type app struct {
	dav     *webdav.WebDav
	catalog *catalog.Store
	player  *player.Player
	server  *server.Server
	logfile *os.File
}

func initApplication() (*app, error) {
	logfile, err := initLogging()
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	a := &app{logfile: logfile}

	logrus.Infof("############# %s v%s ############", config.AppName, config.Version)

	err = a.initServerConnection()
	if err != nil {
		return nil, fmt.Errorf("connect to server: %w", err)
	}

	a.initApp()
	return a, nil
}

// newRemote creates WebDAV client from config, prompting for password if needed.
func newRemote() (*webdav.WebDav, error) {
	err := config.AppConfig.WebDav.PromptPassword()
	if err != nil {
		return nil, err
	}
	clientId, err := config.GetClientID()
	if err != nil {
		logrus.Warningf("get client id: %v", err)
	}
	return webdav.NewWebDav(&config.AppConfig.WebDav, clientId)
}

func (a *app) initServerConnection() error {
	var err error
	logrus.Infof("Connecting to %s...", config.AppConfig.WebDav.Url)
	a.dav, err = newRemote()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), config.AppConfig.WebDav.Timeout())
	defer cancel()
	if err := a.dav.ConnectionOk(ctx); err != nil {
		return fmt.Errorf("no connection to %s: %w", config.AppConfig.WebDav.Url, err)
	}
	logrus.Infof("Successfully connected to WebDAV server (%s)", a.dav.GetId())
	return nil
}

func (a *app) initApp() {
	a.catalog = catalog.NewStore(a.dav, config.AppConfig.Player.DefaultSort())
	a.player = player.NewPlayer(a.catalog, a.dav, player.NewSpeaker(), player.OptionsFromConfig())
	a.server = server.NewServer(a.catalog, a.player, server.OptionsFromConfig())

	// listing failure is not fatal, catalog can be reloaded over api
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.AppConfig.WebDav.Timeout())
		defer cancel()
		tracks, err := a.catalog.Refresh(ctx)
		if err != nil {
			logrus.Errorf("initial catalog refresh: %v", err)
			return
		}
		logrus.Infof("Catalog has %d tracks", len(tracks))
	}()
}

func (a *app) tasks() []task.Tasker {
	return []task.Tasker{a.player, a.server}
}

func (a *app) run() {
	for _, t := range a.tasks() {
		err := t.Start()
		if err != nil {
			logrus.Errorf("Failed to start %T: %v", t, err)
			_ = a.stop()
			os.Exit(1)
		}
	}
	logrus.Info("Application started. Press Ctrl+C to exit.")

	sig := <-catchSignals()
	logrus.Infof("Received signal: %s. Shutting down...", sig)
	if err := a.stop(); err != nil {
		logrus.Errorf("stop application: %v", err)
	}
}

// stop tasks in reverse order
func (a *app) stop() error {
	tasks := a.tasks()
	var firstErr error
	for i := len(tasks) - 1; i >= 0; i-- {
		t := tasks[i]
		if !isRunning(t) {
			continue
		}
		err := t.Stop()
		if err != nil {
			logrus.Errorf("stop %T: %v", t, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("stop %T: %w", t, err)
			}
		}
	}
	if firstErr == nil {
		logrus.Info("Application stopped")
	}
	return firstErr
}

func isRunning(t task.Tasker) bool {
	if r, ok := t.(interface{ IsRunning() bool }); ok {
		return r.IsRunning()
	}
	return true
}

// refreshCatalog lists remote directory once with timeout.
func refreshCatalog(store *catalog.Store) error {
	ctx, cancel := context.WithTimeout(context.Background(), config.AppConfig.WebDav.Timeout()+time.Second)
	defer cancel()
	_, err := store.Refresh(ctx)
	return err
}

func catchSignals() chan os.Signal {
	c := make(chan os.Signal, 1)
	signal.Notify(c,
		syscall.SIGINT,
		syscall.SIGTERM)
	return c
}
