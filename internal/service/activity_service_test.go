package service

import (
	"context"
	"errors"
	"testing"

	upstream "wallet_aggregator/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExplorer struct {
	txs []upstream.ExplorerTx
	err error
}

func (f *fakeExplorer) GetTransactions(_ context.Context, _ string, _ int) ([]upstream.ExplorerTx, error) {
	return f.txs, f.err
}

func newTestActivityService(explorer TransactionLister) *ActivityService {
	return NewActivityService(explorer, testConfig(), zap.NewNop())
}

func TestFetchActivityMapsExplorerRows(t *testing.T) {
	explorer := &fakeExplorer{
		txs: []upstream.ExplorerTx{
			{
				Hash:            "0xAAA",
				From:            "0xFROM",
				To:              "0xTO",
				Value:           "1500000000000000000",
				TimeStamp:       "1700000000",
				FunctionName:    "transfer(address recipient, uint256 amount)",
				IsError:         "0",
				TxReceiptStatus: "1",
			},
			{
				Hash:            "0xBBB",
				From:            "0xfrom",
				To:              "0xto",
				Value:           "0",
				TimeStamp:       "1699999999",
				MethodID:        "0xa9059cbb",
				IsError:         "1",
				TxReceiptStatus: "0",
			},
			{
				Hash:      "0xCCC",
				Value:     "not-a-number",
				TimeStamp: "1699999998",
			},
		},
	}

	svc := newTestActivityService(explorer)

	records, err := svc.FetchActivity(context.Background(), testAddress)
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "0xAAA", first.Hash)
	assert.Equal(t, "0xfrom", first.From)
	assert.Equal(t, "0xto", first.To)
	assert.InDelta(t, 1.5, first.Value, 1e-12)
	assert.Equal(t, int64(1700000000), first.Timestamp)
	assert.Equal(t, "transfer", first.Method)
	assert.Equal(t, "success", first.Status)

	second := records[1]
	assert.Equal(t, "failed", second.Status)
	assert.Equal(t, "0xa9059cbb", second.Method)

	third := records[2]
	assert.Zero(t, third.Value)
	assert.Equal(t, "transfer", third.Method)
}

func TestFetchActivityTruncatesToLimit(t *testing.T) {
	txs := make([]upstream.ExplorerTx, 25)
	for i := range txs {
		txs[i] = upstream.ExplorerTx{Hash: "0x", Value: "0", TimeStamp: "1700000000"}
	}

	svc := newTestActivityService(&fakeExplorer{txs: txs})

	records, err := svc.FetchActivity(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Len(t, records, testConfig().Etherscan.ActivityLimit)
}

func TestFetchActivityExplorerFailure(t *testing.T) {
	svc := newTestActivityService(&fakeExplorer{err: errors.New("explorer down")})

	_, err := svc.FetchActivity(context.Background(), testAddress)
	assert.Error(t, err)
}
