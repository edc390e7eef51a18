package logger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verbose"))
}

func TestNamed_AddsComponentAndHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.WithWriter(&buf, "info").Named("custody")

	log.Debug().Msg("oculto")
	assert.Empty(t, buf.String())

	log.Info().Str("receipt_id", "r-1").Msg("recibo emitido")
	out := buf.String()
	assert.Contains(t, out, `"component":"custody"`)
	assert.Contains(t, out, `"receipt_id":"r-1"`)
}

func TestNop_DiscardsOutput(t *testing.T) {
	log := logger.Nop().Named("x")
	assert.NotPanics(t, func() { log.Error().Msg("nada") })
}
