package stats

import (
	"testing"
	"time"

	"github.com/frstrtr/mongotron/internal/model"
)

func TestAccumulatorCounters(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	acc := NewAccumulator(start)

	acc.Add(&model.DecodedEvent{ContractType: "TransferContract", BlockNumber: 100})
	acc.Add(&model.DecodedEvent{ContractType: "TriggerSmartContract", BlockNumber: 98})
	acc.Add(&model.DecodedEvent{ContractType: "TransferContract", BlockNumber: 105, Suppressed: true})
	acc.Add(nil)

	summary := acc.Summary(start.Add(2 * time.Second))

	if summary.Events != 3 {
		t.Fatalf("events = %d, want 3", summary.Events)
	}
	if summary.Suppressed != 1 {
		t.Fatalf("suppressed = %d, want 1", summary.Suppressed)
	}
	if summary.ByContractType["TransferContract"] != 2 {
		t.Fatalf("transfer count = %d, want 2", summary.ByContractType["TransferContract"])
	}
	if summary.FirstBlock != 98 || summary.LastBlock != 105 {
		t.Fatalf("block range = %d..%d, want 98..105", summary.FirstBlock, summary.LastBlock)
	}
	if summary.EventsPerSec != 1.5 {
		t.Fatalf("rate = %f, want 1.5", summary.EventsPerSec)
	}
}

func TestAccumulatorZeroDuration(t *testing.T) {
	start := time.Now()
	acc := NewAccumulator(start)
	acc.Add(&model.DecodedEvent{})

	summary := acc.Summary(start)
	if summary.EventsPerSec != 0 {
		t.Fatalf("rate should be zero for zero duration, got %f", summary.EventsPerSec)
	}
}
