package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/internal/testutil"
)

func TestMockLogger_Records(t *testing.T) {
	logger := testutil.NewMockLogger()
	logger.Info("trained", logging.String("endpoint", "MDA"))

	messages := logger.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	v, ok := messages[0].Field("endpoint")
	assert.True(t, ok)
	assert.Equal(t, "MDA", v)

	logger.Clear()
	assert.Empty(t, logger.GetMessages())

	logger.Error("failed")
	assert.True(t, logger.HasMessage("error", "failed"))
	assert.False(t, logger.HasMessage("info", "failed"))
}

func TestMockLogger_ChildrenShareBuffer(t *testing.T) {
	logger := testutil.NewMockLogger()
	child := logger.Named("engine").With(logging.String("request_id", "r-9"))
	child.Warn("ros class outside expected set")

	warns := logger.MessagesAt("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, "engine", warns[0].Logger)
	v, _ := warns[0].Field("request_id")
	assert.Equal(t, "r-9", v)
}

//Personal.AI order the ending
