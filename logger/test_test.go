package logger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger()

	assert.NotNil(t, logger)
	assert.Len(t, logger.Logs(), 0)
	assert.Nil(t, logger.metadata)
	assert.Nil(t, logger.child)
}

func TestTestLoggerMethods(t *testing.T) {
	logger := NewTestLogger()

	logger.Trace("Trace message", 1)
	logger.Debug("Debug message", 2)
	logger.Info("Info message", 3)
	logger.Warn("Warn message", 4)
	logger.Error("Error message", 5)

	logs := logger.Logs()
	assert.Len(t, logs, 5)

	assert.Equal(t, "TRACE", logs[0].Severity)
	assert.Equal(t, "Trace message", logs[0].Message)
	assert.Equal(t, []interface{}{1}, logs[0].Arguments)

	assert.Equal(t, "WARNING", logs[3].Severity)
	assert.Equal(t, "Warn message", logs[3].Message)

	assert.Equal(t, "ERROR", logs[4].Severity)
	assert.Equal(t, []interface{}{5}, logs[4].Arguments)

	assert.Equal(t, []string{"Info message"}, logger.Messages("INFO"))
}

func TestTestLoggerWith(t *testing.T) {
	logger := NewTestLogger()

	withMetadata := logger.With(map[string]interface{}{"key1": "value1", "key2": 42})
	testLogger, ok := withMetadata.(*TestLogger)
	assert.True(t, ok)
	assert.Equal(t, "value1", testLogger.metadata["key1"])

	withMore := withMetadata.With(map[string]interface{}{"key3": true})
	testLogger2, ok := withMore.(*TestLogger)
	assert.True(t, ok)
	assert.Equal(t, "value1", testLogger2.metadata["key1"])
	assert.Equal(t, 42, testLogger2.metadata["key2"])
	assert.Equal(t, true, testLogger2.metadata["key3"])

	// derived loggers write into the parent's log
	withMore.Info("from child")
	assert.Equal(t, []string{"from child"}, logger.Messages("INFO"))
}

func TestTestLoggerWithContextAndPrefix(t *testing.T) {
	logger := NewTestLogger()
	assert.Equal(t, logger, logger.WithContext(context.Background()))
	assert.Equal(t, logger, logger.WithPrefix("[prefix]"))
}

func TestTestLoggerStack(t *testing.T) {
	logger1 := NewTestLogger()
	logger2 := NewTestLogger()

	stacked := logger1.Stack(logger2)
	stacked.Debug("both")

	assert.Equal(t, []string{"both"}, logger1.Messages("DEBUG"))
	assert.Equal(t, []string{"both"}, logger2.Messages("DEBUG"))
}

func TestTestLoggerConcurrent(t *testing.T) {
	logger := NewTestLogger()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.Debug("message %d", i)
		}(i)
	}
	wg.Wait()
	assert.Len(t, logger.Logs(), 50)
}

func TestWithKV(t *testing.T) {
	logger := NewTestLogger()
	kvLogger, ok := WithKV(logger, "store", "redis").(*TestLogger)
	assert.True(t, ok)
	assert.Equal(t, "redis", kvLogger.metadata["store"])
}
