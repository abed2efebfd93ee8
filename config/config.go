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

// Package config contains application-wide configurations and constants. Parts of configuration are user-editable
// and per-instance and needs to be persisted. Others are static and meant for tuning the application.
// It also contains some helper methods to read and write config files and create directories when needed.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/crypto/ssh/terminal"
	"tryffel.net/go/davplayer/models"
)

// AppConfig is a configuration loaded during startup
var AppConfig *Config

var configIsEmpty bool

type Config struct {
	WebDav   WebDav `yaml:"webdav"`
	Player   Player `yaml:"player"`
	Server   Server `yaml:"server"`
	ClientID string `yaml:"client_id"`
}

// WebDav is the remote directory to play from.
type WebDav struct {
	Url       string `yaml:"url"`
	Username  string `yaml:"username"`
	Password  string `yaml:"-"`
	Directory string `yaml:"directory"`
	TimeoutS  int    `yaml:"timeout_s"`
	// memory limit in MiB for a single file
	FetchLimitMem int `yaml:"fetch_limit_mem"`
}

type Player struct {
	LogFile            string  `yaml:"logfile"`
	LogLevel           string  `yaml:"loglevel"`
	AudioBufferingMs   int     `yaml:"audio_buffering_ms"`
	Volume             float64 `yaml:"volume"`
	ProgressIntervalMs int     `yaml:"progress_interval_ms"`
	PageSize           int     `yaml:"page_size"`
	SortKey            string  `yaml:"sort_key"`
	SortDirection      string  `yaml:"sort_direction"`
	// skip to next track when auto-advance fails to load a track
	SkipOnError bool `yaml:"skip_on_error"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	EnableMetrics bool   `yaml:"enable_metrics"`
}

func (w *WebDav) sanitize() {
	if w.Url == "" {
		w.Url = "http://localhost:80/music/"
	}
	if w.Directory == "" {
		w.Directory = "/"
	}
	if w.TimeoutS == 0 {
		w.TimeoutS = 30
	}
	if w.FetchLimitMem == 0 {
		w.FetchLimitMem = 200
	}
}

// Timeout returns http timeout.
func (w *WebDav) Timeout() time.Duration {
	return time.Second * time.Duration(w.TimeoutS)
}

// FetchLimit returns max size of a single file in bytes.
func (w *WebDav) FetchLimit() int64 {
	return int64(w.FetchLimitMem) * 1024 * 1024
}

// PromptPassword asks password from user if username is set but password is not.
func (w *WebDav) PromptPassword() error {
	if w.Username == "" || w.Password != "" {
		return nil
	}
	password, err := ReadUserInput(fmt.Sprintf("password for %s@%s", w.Username, w.Url), true)
	if err != nil {
		return err
	}
	w.Password = password
	return nil
}

func (p *Player) sanitize() {
	if p.LogLevel == "" {
		p.LogLevel = logrus.WarnLevel.String()
	}
	if p.AudioBufferingMs == 0 {
		p.AudioBufferingMs = 150
	}
	if !models.AudioVolume(p.Volume).InRange() {
		p.Volume = float64(models.AudioVolume(p.Volume).Clamp())
	}
	if p.ProgressIntervalMs <= 0 {
		p.ProgressIntervalMs = 100
	}
	if p.PageSize <= 0 {
		p.PageSize = 17
	}
	if _, err := models.ParseSort(p.SortKey, p.SortDirection); err != nil {
		if p.SortKey != "" {
			logrus.Warningf("invalid sort in config (%s %s), using default", p.SortKey, p.SortDirection)
		}
		p.SortKey = string(models.DefaultSort.Key)
		p.SortDirection = string(models.DefaultSort.Direction)
	}
}

// DefaultSort returns sort catalog is initialized with.
func (p *Player) DefaultSort() models.Sort {
	sort, err := models.ParseSort(p.SortKey, p.SortDirection)
	if err != nil {
		return models.DefaultSort
	}
	return sort
}

func (s *Server) sanitize() {
	if s.Listen == "" {
		s.Listen = "127.0.0.1:8080"
	}
}

// initialize new config with some sensible values
func (c *Config) initNewConfig() {
	c.WebDav.sanitize()
	c.Player.sanitize()
	c.Server.sanitize()
	c.Player.Volume = 50
	c.Player.SkipOnError = true
	c.Server.EnableMetrics = true
	c.Player.LogLevel = logrus.InfoLevel.String()
}

func (c *Config) sanitize() {
	c.WebDav.sanitize()
	c.Player.sanitize()
	c.Server.sanitize()
}

// can config file be considered empty / not configured
func (c *Config) isEmptyConfig() bool {
	return c.WebDav.Url == ""
}

// ReadUserInput reads value from stdin. Name is printed like 'Enter <name>. If mask is true, input is masked.
func ReadUserInput(name string, mask bool) (string, error) {
	fmt.Print("Enter ", name, ": ")
	var val string
	var err error
	if mask {
		// needs cast for windows
		raw, err := terminal.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return "", fmt.Errorf("failed to read user input: %v", err)
		}
		val = string(raw)
		fmt.Println()
	} else {
		reader := bufio.NewReader(os.Stdin)
		val, err = reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read user input: %v", err)
		}
	}
	val = strings.Trim(val, "\n\r")
	return val, nil
}

// set viper defaults for values where zero value is a valid setting.
func setViperDefaults() {
	viper.SetDefault("player.volume", 50)
	viper.SetDefault("player.skip_on_error", true)
	viper.SetDefault("server.enable_metrics", true)
}

// ConfigFromViper reads full application configuration from viper.
func ConfigFromViper() error {
	setViperDefaults()

	AppConfig = &Config{
		WebDav: WebDav{
			Url:           viper.GetString("webdav.url"),
			Username:      viper.GetString("webdav.username"),
			Password:      viper.GetString("webdav.password"),
			Directory:     viper.GetString("webdav.directory"),
			TimeoutS:      viper.GetInt("webdav.timeout_s"),
			FetchLimitMem: viper.GetInt("webdav.fetch_limit_mem"),
		},
		Player: Player{
			LogFile:            viper.GetString("player.logfile"),
			LogLevel:           viper.GetString("player.loglevel"),
			AudioBufferingMs:   viper.GetInt("player.audio_buffering_ms"),
			Volume:             viper.GetFloat64("player.volume"),
			ProgressIntervalMs: viper.GetInt("player.progress_interval_ms"),
			PageSize:           viper.GetInt("player.page_size"),
			SortKey:            viper.GetString("player.sort_key"),
			SortDirection:      viper.GetString("player.sort_direction"),
			SkipOnError:        viper.GetBool("player.skip_on_error"),
		},
		Server: Server{
			Listen:        viper.GetString("server.listen"),
			EnableMetrics: viper.GetBool("server.enable_metrics"),
		},
		ClientID: viper.GetString("client_id"),
	}

	if AppConfig.isEmptyConfig() {
		configIsEmpty = true
		setDefaults()
	} else {
		AppConfig.sanitize()
	}
	applyTuning()

	logrus.Debugf("Effective Config - WebDav url: %s, directory: %s", AppConfig.WebDav.Url, AppConfig.WebDav.Directory)
	logrus.Debugf("Effective Config - Player LogLevel: %s", AppConfig.Player.LogLevel)
	return nil
}

// update static tuning values from AppConfig
func applyTuning() {
	AudioBufferPeriod = time.Millisecond * time.Duration(AppConfig.Player.AudioBufferingMs)
	ProgressInterval = time.Millisecond * time.Duration(AppConfig.Player.ProgressIntervalMs)
}

func SaveConfig() error {
	UpdateViper()
	err := viper.WriteConfig()
	if err != nil {
		return fmt.Errorf("save config file: %v", err)
	}
	return nil
}

// NewConfigFile creates an empty config file and directories to given file. If file is empty,
// default location is used.
func NewConfigFile(file string) error {
	if file == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("get config directory: %v", err)
		}
		file = path.Join(dir, AppNameLower, AppNameLower+".yaml")
	}

	err := os.MkdirAll(path.Dir(file), 0700)
	if err != nil {
		return fmt.Errorf("create config directory: %v", err)
	}

	fd, err := os.OpenFile(file, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("create config file: %v", err)
	}
	logrus.Infof("Created new config file: %s", file)
	return fd.Close()
}

func setDefaults() {
	if configIsEmpty {
		AppConfig.initNewConfig()
		err := SaveConfig()
		if err != nil {
			logrus.Errorf("save config file: %v", err)
		}
	}
}

// set AppConfig. This is needed for testing.
func configFrom(conf *Config) {
	AppConfig = conf
	applyTuning()
}

func UpdateViper() {
	viper.Set("webdav.url", AppConfig.WebDav.Url)
	viper.Set("webdav.username", AppConfig.WebDav.Username)
	viper.Set("webdav.directory", AppConfig.WebDav.Directory)
	viper.Set("webdav.timeout_s", AppConfig.WebDav.TimeoutS)
	viper.Set("webdav.fetch_limit_mem", AppConfig.WebDav.FetchLimitMem)

	viper.Set("player.logfile", AppConfig.Player.LogFile)
	viper.Set("player.loglevel", AppConfig.Player.LogLevel)
	viper.Set("player.audio_buffering_ms", AppConfig.Player.AudioBufferingMs)
	viper.Set("player.volume", AppConfig.Player.Volume)
	viper.Set("player.progress_interval_ms", AppConfig.Player.ProgressIntervalMs)
	viper.Set("player.page_size", AppConfig.Player.PageSize)
	viper.Set("player.sort_key", AppConfig.Player.SortKey)
	viper.Set("player.sort_direction", AppConfig.Player.SortDirection)
	viper.Set("player.skip_on_error", AppConfig.Player.SkipOnError)

	viper.Set("server.listen", AppConfig.Server.Listen)
	viper.Set("server.enable_metrics", AppConfig.Server.EnableMetrics)
	viper.Set("client_id", AppConfig.ClientID)
}

// GetClientID retrieves the unique client ID for this instance.
// If an ID doesn't exist in the config, it derives one from machine id, or generates a new UUID
// if machine id is not available. New id is saved to config.
func GetClientID() (string, error) {
	if AppConfig.ClientID != "" {
		return AppConfig.ClientID, nil
	}

	id, err := machineid.ProtectedID(AppNameLower)
	if err != nil {
		logrus.Debugf("machine id not available: %v", err)
		newID, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("failed to generate client UUID: %w", err)
		}
		id = newID.String()
	}

	AppConfig.ClientID = id
	logrus.Infof("Generated new Client ID: %s", AppConfig.ClientID)

	err = SaveConfig()
	if err != nil {
		// id is saved on next successful save
		logrus.Errorf("Failed to save config after generating Client ID: %v", err)
	}

	return AppConfig.ClientID, nil
}
