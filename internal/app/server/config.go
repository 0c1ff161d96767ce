package server

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	AuthSecret  string
	AuthTimeout time.Duration
	IdleTimeout time.Duration
	PongTimeout time.Duration

	AwsRegion            string
	MatchesTableName     string
	MatchEventsTableName string
	StandingsTableName   string
	CoachesTableName     string
}

func NewConfig() Config {
	var config Config

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs/server")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}
	viper.AutomaticEnv()

	config.Port = viper.GetString("Server.Port")
	config.AuthSecret = viper.GetString("Server.AuthSecret")
	config.AuthTimeout = parseDuration("Server.AuthTimeout")
	config.IdleTimeout = parseDuration("Server.IdleTimeout")
	config.PongTimeout = parseDuration("Server.PongTimeout")
	config.AwsRegion = viper.GetString("AWS_REGION")
	config.MatchesTableName = viper.GetString("Tables.Matches")
	config.MatchEventsTableName = viper.GetString("Tables.MatchEvents")
	config.StandingsTableName = viper.GetString("Tables.Standings")
	config.CoachesTableName = viper.GetString("Tables.Coaches")

	return config
}

func parseDuration(key string) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}
	return d
}
