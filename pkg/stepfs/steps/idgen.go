package steps

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/arthur-debert/stepfs/pkg/stepfs/core"
)

// IDGenerator assigns an ID to a step that arrived without one
type IDGenerator func(step core.BuildStep) core.StepID

var sequenceCounter atomic.Uint64

// UUIDGenerator generates random UUID-based IDs
func UUIDGenerator(core.BuildStep) core.StepID {
	return core.StepID(uuid.NewString())
}

// HashIDGenerator generates IDs from the step type and path
func HashIDGenerator(step core.BuildStep) core.StepID {
	h := sha256.New()
	h.Write([]byte(step.Type))
	h.Write([]byte(step.Path))
	_, _ = fmt.Fprintf(h, "%d", time.Now().UnixNano())
	return core.StepID(fmt.Sprintf("%s-%s", step.Type, hex.EncodeToString(h.Sum(nil))[:8]))
}

// SequenceIDGenerator generates sequential IDs (useful for testing)
func SequenceIDGenerator(core.BuildStep) core.StepID {
	return core.StepID(fmt.Sprintf("step-%d", sequenceCounter.Add(1)))
}

// ResetSequenceCounter resets the sequence counter (for testing)
func ResetSequenceCounter() {
	sequenceCounter.Store(0)
}
