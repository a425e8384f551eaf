package server

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem/internal/auth"
	"github.com/lox/holdem/internal/bot"
)

// Config is the complete server configuration, usually loaded from an
// HCL file:
//
//	server {
//	  host = "0.0.0.0"
//	  port = 8080
//	}
//
//	table {
//	  small_blind    = 5
//	  big_blind      = 10
//	  starting_chips = 1000
//	  seats          = 6
//	}
//
//	npc "river-rat" {
//	  kind = "caller"
//	}
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Table  TableSettings  `hcl:"table,block"`
	NPCs   []NPCConfig    `hcl:"npc,block"`
}

// ServerSettings is the listener-level configuration. AuthToken gates
// joins with a shared secret; AuthURL defers the verdict to an external
// webhook. At most one may be set, and leaving both empty keeps the
// table open.
type ServerSettings struct {
	Host      string `hcl:"host,optional"`
	Port      int    `hcl:"port,optional"`
	LogLevel  string `hcl:"log_level,optional"`
	LogFile   string `hcl:"log_file,optional"`
	AuthToken string `hcl:"auth_token,optional"`
	AuthURL   string `hcl:"auth_url,optional"`
}

// TableSettings configures the single table the server runs. Remote
// players take the seats the NPCs leave open; the game starts as soon
// as every seat is filled.
type TableSettings struct {
	SmallBlind      int   `hcl:"small_blind"`
	BigBlind        int   `hcl:"big_blind"`
	StartingChips   int   `hcl:"starting_chips,optional"`
	Seats           int   `hcl:"seats,optional"`
	HandLimit       int   `hcl:"hand_limit,optional"`
	DecisionTimeout int   `hcl:"decision_timeout,optional"` // seconds
	Seed            int64 `hcl:"seed,optional"`
}

// NPCConfig seats a house bot at the table.
type NPCConfig struct {
	Name string `hcl:"name,label"`
	Kind string `hcl:"kind"`
}

// DefaultConfig returns the configuration used when no file is given: a
// six-seat 5/10 table with two house bots keeping the action going.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Host:     "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Table: TableSettings{
			SmallBlind:      5,
			BigBlind:        10,
			StartingChips:   1000,
			Seats:           6,
			DecisionTimeout: 30,
		},
		NPCs: []NPCConfig{
			{Name: "station", Kind: "caller"},
			{Name: "gambler", Kind: "maniac"},
		},
	}
}

// LoadConfig reads an HCL configuration file. A missing file yields the
// defaults so the server can start bare.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %s", filename, diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %s", filename, diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Table.StartingChips == 0 {
		c.Table.StartingChips = c.Table.BigBlind * 100
	}
	if c.Table.Seats == 0 {
		c.Table.Seats = 6
	}
	if c.Table.DecisionTimeout == 0 {
		c.Table.DecisionTimeout = 30
	}
}

// Validate rejects configurations the table could not run.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Server.AuthToken != "" && c.Server.AuthURL != "" {
		return fmt.Errorf("auth_token and auth_url cannot both be set")
	}
	if c.Table.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}
	if c.Table.BigBlind < c.Table.SmallBlind {
		return fmt.Errorf("big blind %d below small blind %d", c.Table.BigBlind, c.Table.SmallBlind)
	}
	if c.Table.Seats < 2 || c.Table.Seats > 10 {
		return fmt.Errorf("seats must be between 2 and 10, got %d", c.Table.Seats)
	}
	if c.Table.StartingChips < c.Table.BigBlind {
		return fmt.Errorf("starting chips %d cannot cover the big blind", c.Table.StartingChips)
	}
	if c.Table.HandLimit < 0 {
		return fmt.Errorf("hand limit cannot be negative")
	}
	if c.Table.DecisionTimeout < 1 {
		return fmt.Errorf("decision timeout must be at least 1 second")
	}
	if len(c.NPCs) >= c.Table.Seats {
		return fmt.Errorf("%d npcs leave no seat for a player at a %d-seat table", len(c.NPCs), c.Table.Seats)
	}

	seen := make(map[string]bool, len(c.NPCs))
	for _, npc := range c.NPCs {
		if npc.Name == "" {
			return fmt.Errorf("npc needs a name")
		}
		if seen[npc.Name] {
			return fmt.Errorf("duplicate npc name %q", npc.Name)
		}
		seen[npc.Name] = true
		if !slices.Contains(bot.Kinds(), npc.Kind) {
			return fmt.Errorf("npc %s: unknown kind %q (valid: %v)", npc.Name, npc.Kind, bot.Kinds())
		}
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// HumanSeats returns how many remote players the table waits for before
// starting.
func (c *Config) HumanSeats() int {
	return c.Table.Seats - len(c.NPCs)
}

// AuthValidator builds the join gate the configuration asks for.
func (c *Config) AuthValidator() auth.Validator {
	switch {
	case c.Server.AuthURL != "":
		return auth.NewWebhook(c.Server.AuthURL, 5*time.Second)
	case c.Server.AuthToken != "":
		return auth.NewStatic(c.Server.AuthToken)
	}
	return auth.Open{}
}
