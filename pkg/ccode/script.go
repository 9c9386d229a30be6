package ccode

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nicolasleger/rubinius/pkg/object"
)

// ExecuteScript runs code as a top-level program against root.
//
// Any prior raised error on the thread is cleared before entry. An error
// raised during execution is recorded on the thread, reported as a single
// diagnostic line, and returned to the caller rather than aborting the
// process.
func ExecuteScript(t *Thread, code *Code, root object.Value) (object.Value, error) {
	t.raised = nil

	v, err := code.Run(t, root, nil)
	if err != nil {
		t.raised = err

		logger().Error("exception raised running script",
			zap.String("name", code.Name.String()),
			zap.String("file", code.File.String()),
			zap.Error(err))

		return nil, fmt.Errorf("run script %s: %w", code.Name, err)
	}

	return v, nil
}
