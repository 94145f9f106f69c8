package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/ingest"
	"github.com/MrJamesThe3rd/tally/internal/message"
	"github.com/MrJamesThe3rd/tally/internal/parser"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

func hdfcDebit(id, amount, payee string) message.Message {
	return message.Message{
		ID:     id,
		Source: "sms",
		From:   "VM-HDFCBK",
		Body:   fmt.Sprintf("Rs.%s debited from a/c **1234 on 05-10-23 to VPA %s (UPI Ref No 1).", amount, payee),
	}
}

// batch returns n parsable, one unmatched and one failing message, interleaved.
func batch(n int) []message.Message {
	var msgs []message.Message

	for i := range n {
		msgs = append(msgs, hdfcDebit(fmt.Sprintf("ok-%d", i), fmt.Sprintf("%d.00", i+1), "shop@upi"))

		switch i {
		case 0:
			msgs = append(msgs, message.Message{ID: "otp", Source: "sms", From: "VM-HDFCBK", Body: "Your OTP is 123456"})
		case 1:
			msgs = append(msgs, message.Message{ID: "broken", Source: "sms", From: "VM-HDFCBK", Body: "Rs.1.2.3 debited from a/c **1234 on 05-10-23 to VPA x"})
		}
	}

	return msgs
}

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestDriver_Run_KeepsOnlyParsed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := ingest.NewMockSink(ctrl)

	var written []transaction.Transaction

	sink.EXPECT().WriteBatch(gomock.Any(), gomock.Len(3)).
		DoAndReturn(func(_ context.Context, txs []transaction.Transaction) (*transaction.ImportResult, error) {
			written = txs
			return &transaction.ImportResult{Imported: make([]*transaction.Record, 2), Skipped: txs[:1]}, nil
		})

	var logs bytes.Buffer

	d := ingest.NewDriver(parser.Default(), sink, ingest.WithLogger(newLogger(&logs)))

	summary, err := d.Run(context.Background(), batch(3))
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Messages)
	assert.Equal(t, 3, summary.Parsed)
	assert.Equal(t, 1, summary.Unmatched)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, summary.Attempted)
	assert.Equal(t, 2, summary.Written)
	assert.Equal(t, 1, summary.Duplicates)

	require.Len(t, written, 3)
	assert.Equal(t, "ok-0", written[0].MessageID)
	assert.Equal(t, "ok-2", written[2].MessageID)
	assert.Equal(t, int64(-300), written[2].Amount)

	out := logs.String()
	assert.Contains(t, out, `"msg":"no parser matched"`)
	assert.Contains(t, out, `"message_id":"otp"`)
	assert.Contains(t, out, `"msg":"parse failure"`)
	assert.Contains(t, out, `"parser":"hdfc"`)
	assert.Contains(t, out, `"msg":"batch summary"`)
}

func TestDriver_Run_EmptyBatchStillWritten(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := ingest.NewMockSink(ctrl)
	sink.EXPECT().WriteBatch(gomock.Any(), gomock.Len(0)).Return(&transaction.ImportResult{}, nil)

	d := ingest.NewDriver(parser.Default(), sink, ingest.WithLogger(newLogger(&bytes.Buffer{})))

	summary, err := d.Run(context.Background(), []message.Message{{ID: "x", Body: "hello"}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Unmatched)
	assert.Zero(t, summary.Attempted)
}

func TestDriver_Run_SinkFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sinkErr := errors.New("ledger unavailable")

	sink := ingest.NewMockSink(ctrl)
	sink.EXPECT().WriteBatch(gomock.Any(), gomock.Len(2)).Return(nil, sinkErr)

	var logs bytes.Buffer

	d := ingest.NewDriver(parser.Default(), sink, ingest.WithLogger(newLogger(&logs)))

	summary, err := d.Run(context.Background(), batch(2))
	require.ErrorIs(t, err, sinkErr)

	assert.Equal(t, 2, summary.Attempted)
	assert.Zero(t, summary.Written)
	assert.Contains(t, logs.String(), "ledger unavailable")
	assert.Contains(t, logs.String(), `"msg":"batch summary"`)
}

func TestDriver_Run_ParallelMatchesSequential(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	msgs := batch(50)

	capture := func(dst *[]transaction.Transaction) func(context.Context, []transaction.Transaction) (*transaction.ImportResult, error) {
		return func(_ context.Context, txs []transaction.Transaction) (*transaction.ImportResult, error) {
			*dst = txs
			return &transaction.ImportResult{}, nil
		}
	}

	var sequential, parallel []transaction.Transaction

	sink := ingest.NewMockSink(ctrl)
	gomock.InOrder(
		sink.EXPECT().WriteBatch(gomock.Any(), gomock.Any()).DoAndReturn(capture(&sequential)),
		sink.EXPECT().WriteBatch(gomock.Any(), gomock.Any()).DoAndReturn(capture(&parallel)),
	)

	logger := newLogger(&bytes.Buffer{})

	seqSummary, err := ingest.NewDriver(parser.Default(), sink, ingest.WithLogger(logger)).Run(context.Background(), msgs)
	require.NoError(t, err)

	parSummary, err := ingest.NewDriver(parser.Default(), sink, ingest.WithLogger(logger), ingest.WithWorkers(8)).Run(context.Background(), msgs)
	require.NoError(t, err)

	assert.Len(t, sequential, 50)
	assert.Equal(t, sequential, parallel)
	assert.Equal(t, seqSummary.Parsed, parSummary.Parsed)
	assert.Equal(t, seqSummary.Failed, parSummary.Failed)
}

func TestDriver_Run_DryRunSkipsSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := ingest.NewMockSink(ctrl)

	d := ingest.NewDriver(parser.Default(), sink, ingest.WithDryRun(true), ingest.WithLogger(newLogger(&bytes.Buffer{})))

	summary, err := d.Run(context.Background(), batch(2))
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 2, summary.Attempted)
	assert.Zero(t, summary.Written)
	assert.Len(t, summary.Outcomes, 4)
}

func TestDriver_Run_RenamesPayees(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	payees := ingest.NewMockPayeeSuggester(ctrl)
	payees.EXPECT().Suggest(gomock.Any(), "hdfc:1234", "VPA swiggy@icici").Return("Swiggy", nil)
	payees.EXPECT().Suggest(gomock.Any(), "hdfc:1234", "VPA unknown@upi").Return("", nil)
	payees.EXPECT().Suggest(gomock.Any(), "hdfc:1234", "VPA flaky@upi").Return("", errors.New("timeout"))

	sink := ingest.NewMockSink(ctrl)
	sink.EXPECT().WriteBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txs []transaction.Transaction) (*transaction.ImportResult, error) {
			require.Len(t, txs, 3)
			assert.Equal(t, "Swiggy", txs[0].Payee)
			assert.Equal(t, "unknown@upi", txs[1].Payee)
			assert.Equal(t, "flaky@upi", txs[2].Payee)

			return &transaction.ImportResult{}, nil
		})

	d := ingest.NewDriver(parser.Default(), sink,
		ingest.WithPayeeSuggester(payees),
		ingest.WithLogger(newLogger(&bytes.Buffer{})),
	)

	_, err := d.Run(context.Background(), []message.Message{
		hdfcDebit("1", "10.00", "swiggy@icici"),
		hdfcDebit("2", "20.00", "unknown@upi"),
		hdfcDebit("3", "30.00", "flaky@upi"),
	})
	require.NoError(t, err)
}

func TestDriver_Run_Canceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := ingest.NewMockSink(ctrl)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()

	<-ctx.Done()

	for _, workers := range []int{1, 4} {
		d := ingest.NewDriver(parser.Default(), sink, ingest.WithWorkers(workers))

		_, err := d.Run(ctx, batch(3))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
}
