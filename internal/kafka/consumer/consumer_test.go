package consumer

import (
	"context"
	"sync"
	"testing"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

func TestNewValidatesArguments(t *testing.T) {
	if _, err := New(nil, "group", zerolog.Nop(), true); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := New([]string{"localhost:9092"}, "", zerolog.Nop(), true); err == nil {
		t.Fatalf("expected error without group id")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ClientID != "rongcloud-worker" {
		t.Fatalf("unexpected client id %s", cfg.ClientID)
	}
	if !cfg.Consumer.Return.Errors {
		t.Fatalf("expected consumer errors to be returned")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}
}

func TestCommitRequiresSession(t *testing.T) {
	c := &Consumer{logger: zerolog.Nop()}
	if err := c.Commit(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil record")
	}
	if err := c.Commit(context.Background(), &Record{Topic: "t"}); err == nil {
		t.Fatalf("expected error for record without session")
	}
}

func TestFromHeadersSkipsEmptyKeys(t *testing.T) {
	headers := fromHeaders([]*sarama.RecordHeader{
		{Key: []byte("trace-id"), Value: []byte("abc")},
		{Key: nil, Value: []byte("ignored")},
		nil,
	})
	if len(headers) != 1 || string(headers["trace-id"]) != "abc" {
		t.Fatalf("unexpected headers %v", headers)
	}
	if fromHeaders(nil) != nil {
		t.Fatalf("expected nil map for no headers")
	}
}

func TestNewRecordCopiesMessage(t *testing.T) {
	msg := &sarama.ConsumerMessage{
		Topic:     "rongcloud.action.request",
		Partition: 2,
		Offset:    41,
		Key:       []byte("req-1"),
		Value:     []byte(`{"action":"push"}`),
	}
	rec := newRecord(nil, msg)
	msg.Value[0] = 'X'
	if string(rec.Value) != `{"action":"push"}` {
		t.Fatalf("expected value to be copied, got %s", rec.Value)
	}
	if rec.Partition != 2 || rec.Offset != 41 || string(rec.Key) != "req-1" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

type markedOffset struct {
	topic     string
	partition int32
	offset    int64
}

type sessionStub struct {
	sarama.ConsumerGroupSession

	mu      sync.Mutex
	marked  []markedOffset
	commits int
}

func (s *sessionStub) MarkOffset(topic string, partition int32, offset int64, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, markedOffset{topic: topic, partition: partition, offset: offset})
}

func (s *sessionStub) Commit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
}

func (s *sessionStub) marks() []markedOffset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]markedOffset(nil), s.marked...)
}

func claimRecords(session sarama.ConsumerGroupSession, offsets ...int64) []*Record {
	tracker := newPartitionOffsets()
	records := make([]*Record, 0, len(offsets))
	for _, off := range offsets {
		tracker.track(off)
		rec := newRecord(session, &sarama.ConsumerMessage{Topic: "rongcloud.action.request", Partition: 3, Offset: off})
		rec.offsets = tracker
		records = append(records, rec)
	}
	return records
}

func TestCommitHoldsOffsetUntilEarlierRecordsComplete(t *testing.T) {
	session := &sessionStub{}
	c := &Consumer{logger: zerolog.Nop(), commitOnAck: true}
	records := claimRecords(session, 4, 5)

	if err := c.Commit(context.Background(), records[1]); err != nil {
		t.Fatalf("unexpected commit error: %v", err)
	}
	if marks := session.marks(); len(marks) != 0 {
		t.Fatalf("expected offset 5 to wait for offset 4, got marks %v", marks)
	}
	if session.commits != 0 {
		t.Fatalf("expected no flush before the prefix advanced")
	}

	if err := c.Commit(context.Background(), records[0]); err != nil {
		t.Fatalf("unexpected commit error: %v", err)
	}
	marks := session.marks()
	if len(marks) != 1 || marks[0] != (markedOffset{topic: "rongcloud.action.request", partition: 3, offset: 6}) {
		t.Fatalf("expected a single mark at offset 6, got %v", marks)
	}
	if session.commits != 1 {
		t.Fatalf("expected one flush, got %d", session.commits)
	}
}

func TestCommitNeverPassesAnUncommittedRecord(t *testing.T) {
	session := &sessionStub{}
	c := &Consumer{logger: zerolog.Nop()}
	records := claimRecords(session, 10, 11, 12)

	// 11 is abandoned, so only 10 may be marked.
	for _, rec := range []*Record{records[2], records[0]} {
		if err := c.Commit(context.Background(), rec); err != nil {
			t.Fatalf("unexpected commit error: %v", err)
		}
	}
	marks := session.marks()
	if len(marks) != 1 || marks[0].offset != 11 {
		t.Fatalf("expected the mark to stop at offset 11, got %v", marks)
	}
	if got := records[0].offsets.lowest(); got != 11 {
		t.Fatalf("expected offset 11 to remain pending, got %d", got)
	}
}

func TestPartitionOffsetsHandlesGaps(t *testing.T) {
	p := newPartitionOffsets()
	for _, off := range []int64{20, 23, 24} {
		p.track(off)
	}
	if _, ok := p.ack(23); ok {
		t.Fatalf("expected no advance while 20 is pending")
	}
	if next, ok := p.ack(20); !ok || next != 24 {
		t.Fatalf("expected advance to 24, got %d %v", next, ok)
	}
	if next, ok := p.ack(24); !ok || next != 25 {
		t.Fatalf("expected advance to 25, got %d %v", next, ok)
	}
	if p.lowest() != -1 {
		t.Fatalf("expected nothing pending")
	}
}
