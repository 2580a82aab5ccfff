package server

import (
	"context"
	"fmt"

	"github.com/grafana/fmt-language-server/pkg/formatter"
	"github.com/jdbaldry/go-language-server-protocol/jsonrpc2"
	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
)

// Configuration is the startup configuration of the server.
type Configuration struct {
	// Formatters overrides or adds formatters by language ID.
	Formatters map[string]formatter.Formatter
}

func (s *Server) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error {
	return s.applySettings(params.Settings)
}

// applySettings applies the settings object sent by the client, either as
// initialization options or in a configuration change.
func (s *Server) applySettings(settings interface{}) error {
	settingsMap, ok := settings.(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: unsupported settings payload. expected json object, got: %T", jsonrpc2.ErrInvalidParams, settings)
	}

	// Validate everything before applying anything.
	var (
		level      *log.Level
		formatters map[string]formatter.Pipeline
	)
	for sk, sv := range settingsMap {
		switch sk {
		case "log_level":
			newLevel, err := parseLogLevel(sv)
			if err != nil {
				return fmt.Errorf("%w: log_level parsing failed: %v", jsonrpc2.ErrInvalidParams, err)
			}
			level = &newLevel

		case "formatters":
			newFormatters, err := parseFormatters(sv)
			if err != nil {
				return fmt.Errorf("%w: formatters parsing failed: %v", jsonrpc2.ErrInvalidParams, err)
			}
			formatters = newFormatters

		default:
			return fmt.Errorf("%w: unsupported settings key: %q", jsonrpc2.ErrInvalidParams, sk)
		}
	}

	if level != nil {
		log.Infof("Setting log level to %s", *level)
		log.SetLevel(*level)
	}
	for languageID, pipeline := range formatters {
		log.Infof("Setting formatter for %s to %v", languageID, pipeline)
		s.formatters.Register(languageID, pipeline)
	}
	return nil
}

func parseLogLevel(unparsed interface{}) (log.Level, error) {
	str, ok := unparsed.(string)
	if !ok {
		return 0, fmt.Errorf("unsupported settings value for log_level. expected string. got: %T", unparsed)
	}
	return log.ParseLevel(str)
}

func parseFormatters(unparsed interface{}) (map[string]formatter.Pipeline, error) {
	var commands map[string][][]string
	if err := mapstructure.Decode(unparsed, &commands); err != nil {
		return nil, err
	}

	formatters := make(map[string]formatter.Pipeline, len(commands))
	for languageID, pipeline := range commands {
		for i, argv := range pipeline {
			if len(argv) == 0 {
				return nil, fmt.Errorf("unsupported settings value for formatters.%s[%d]. expected a non-empty command", languageID, i)
			}
		}
		formatters[languageID] = formatter.Pipeline(pipeline)
	}
	return formatters, nil
}
