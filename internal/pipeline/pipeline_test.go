package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GajendraSingh33/fraud-detection-system/internal/features"
	"github.com/GajendraSingh33/fraud-detection-system/internal/realtime"
	"github.com/GajendraSingh33/fraud-detection-system/internal/scoring"
	"github.com/GajendraSingh33/fraud-detection-system/internal/stats"
	"github.com/GajendraSingh33/fraud-detection-system/internal/transaction"
)

// recorder captures broadcasts for assertions.
type recorder struct {
	mu   sync.Mutex
	msgs []realtime.Envelope
}

func (r *recorder) Broadcast(msgType string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, realtime.Envelope{Type: msgType, Data: data})
}

func (r *recorder) byType(msgType string) []realtime.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []realtime.Envelope
	for _, m := range r.msgs {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

type stubModel struct{ p float64 }

func (m stubModel) Score(features.Vector) float64 { return m.p }

func newTestPipeline(p float64) (*Pipeline, *recorder, *stats.Aggregator) {
	scorer := scoring.NewWithModels(0.7, features.Fit(nil), stubModel{p}, stubModel{p})
	agg := stats.New()
	rec := &recorder{}
	return New(scorer, agg, rec, slog.Default()), rec, agg
}

func testTx(id string) transaction.Transaction {
	return transaction.Transaction{
		ID:           id,
		Amount:       42.5,
		MerchantType: "grocery",
		Location:     "Boston, MA",
		TimeOfDay:    "morning",
		CardType:     "debit",
		Timestamp:    time.Now().UTC(),
	}
}

func TestProcessRoundTrip(t *testing.T) {
	p, rec, agg := newTestPipeline(0.1)

	st, err := p.Process(context.Background(), testTx("txn_1"), realtime.MessageNewTransaction, SourceAnalyze)
	require.NoError(t, err)
	assert.Equal(t, "txn_1", st.TransactionID)
	assert.Equal(t, scoring.StatusSafe, st.Status)

	// Exactly one transaction envelope plus one stats update.
	txMsgs := rec.byType(realtime.MessageNewTransaction)
	require.Len(t, txMsgs, 1)
	got := txMsgs[0].Data.(scoring.ScoredTransaction)
	assert.Equal(t, st.TransactionID, got.TransactionID)
	assert.Equal(t, st.FraudProbability, got.FraudProbability)

	statsMsgs := rec.byType(realtime.MessageStats)
	require.Len(t, statsMsgs, 1)
	snap := statsMsgs[0].Data.(stats.Snapshot)
	assert.Equal(t, int64(1), snap.TotalTransactions)

	assert.Equal(t, int64(1), agg.Snapshot().SafeTransactions)
}

func TestProcessFeedMessageType(t *testing.T) {
	p, rec, _ := newTestPipeline(0.9)

	_, err := p.Process(context.Background(), testTx("txn_feed"), realtime.MessageRealtimeTransaction, SourceFeed)
	require.NoError(t, err)

	require.Len(t, rec.byType(realtime.MessageRealtimeTransaction), 1)
	assert.Empty(t, rec.byType(realtime.MessageNewTransaction))
}

func TestProcessUntrainedScorer(t *testing.T) {
	scorer := scoring.New(0.7)
	agg := stats.New()
	rec := &recorder{}
	p := New(scorer, agg, rec, slog.Default())

	_, err := p.Process(context.Background(), testTx("txn_x"), realtime.MessageNewTransaction, SourceAnalyze)
	require.ErrorIs(t, err, scoring.ErrModelNotTrained)

	// Nothing recorded, nothing broadcast.
	assert.Equal(t, int64(0), agg.Snapshot().TotalTransactions)
	assert.Empty(t, rec.msgs)
}

func TestReplayShape(t *testing.T) {
	p, _, _ := newTestPipeline(0.1)

	for i := 0; i < 3; i++ {
		_, err := p.Process(context.Background(), testTx("txn_r"), realtime.MessageRealtimeTransaction, SourceFeed)
		require.NoError(t, err)
	}

	envs := p.Replay()
	require.Len(t, envs, 4)
	assert.Equal(t, realtime.MessageStats, envs[0].Type)
	for _, env := range envs[1:] {
		assert.Equal(t, realtime.MessageRealtimeTransaction, env.Type)
	}
}
