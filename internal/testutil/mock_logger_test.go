package testutil_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cnsipo-attrs/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)
	assert.Equal(t, "value", messages[0].Field("key"))

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_DerivedLoggersShareRecording(t *testing.T) {
	root := testutil.NewMockLogger()

	child := root.Named("auxfill").With(logging.Int(logging.FieldYear, 1998))
	child.Named("store").Warn("slow batch")

	ctx := logging.WithRequestID(context.Background(), "req-1")
	root.WithContext(ctx).WithError(errors.New("boom")).Error("failed")

	msg, ok := root.Find("warn", "slow batch")
	require.True(t, ok)
	assert.Equal(t, "auxfill.store", msg.Logger)
	assert.Equal(t, 1998, msg.Field(logging.FieldYear))

	msg, ok = root.Find("error", "failed")
	require.True(t, ok)
	assert.Equal(t, "req-1", msg.Field(logging.FieldRequestID))
	assert.Nil(t, msg.Field("missing"))
}

//Personal.AI order the ending
