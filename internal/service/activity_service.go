package service

import (
	"context"
	"math/big"
	"strconv"
	"strings"
	"time"

	"wallet_aggregator/internal/config"
	"wallet_aggregator/internal/domain/entity"
	upstream "wallet_aggregator/internal/entity"
	"wallet_aggregator/internal/utils"

	"go.uber.org/zap"
)

// TransactionLister abstracts the block-explorer transaction-list provider.
type TransactionLister interface {
	GetTransactions(ctx context.Context, address string, limit int) ([]upstream.ExplorerTx, error)
}

// ActivityService fetches the most recent transactions for an address.
// Activity is always optional; every failure yields an empty list upstream.
type ActivityService struct {
	explorer TransactionLister
	logger   *zap.Logger
	limit    int
	timeout  time.Duration
}

// NewActivityService creates an ActivityService from configuration.
func NewActivityService(explorer TransactionLister, cfg *config.Config, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		explorer: explorer,
		logger:   logger.Named("ActivityService"),
		limit:    cfg.Etherscan.ActivityLimit,
		timeout:  time.Duration(cfg.Timeouts.ActivityMillis) * time.Millisecond,
	}
}

// FetchActivity returns the most recent transactions, newest first.
func (s *ActivityService) FetchActivity(ctx context.Context, address string) ([]entity.ActivityRecord, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	transactions, err := s.explorer.GetTransactions(fetchCtx, address, s.limit)
	if err != nil {
		return nil, err
	}

	records := make([]entity.ActivityRecord, 0, len(transactions))
	for _, tx := range transactions {
		records = append(records, toActivityRecord(tx))
		if len(records) >= s.limit {
			break
		}
	}
	return records, nil
}

// toActivityRecord converts one explorer row into the domain model.
// The explorer reports value as a decimal wei string.
func toActivityRecord(tx upstream.ExplorerTx) entity.ActivityRecord {
	timestamp, _ := strconv.ParseInt(tx.TimeStamp, 10, 64)

	status := "success"
	if tx.IsError == "1" || tx.TxReceiptStatus == "0" {
		status = "failed"
	}

	valueWei, ok := new(big.Int).SetString(tx.Value, 10)
	if !ok {
		valueWei = new(big.Int)
	}

	return entity.ActivityRecord{
		Hash:      tx.Hash,
		From:      strings.ToLower(tx.From),
		To:        strings.ToLower(tx.To),
		Value:     utils.BigIntToFloat(valueWei, 18),
		Timestamp: timestamp,
		Method:    methodLabel(tx),
		Status:    status,
	}
}

// methodLabel derives a best-effort label for what the transaction did.
func methodLabel(tx upstream.ExplorerTx) string {
	if tx.FunctionName != "" {
		if index := strings.Index(tx.FunctionName, "("); index > 0 {
			return tx.FunctionName[:index]
		}
		return tx.FunctionName
	}
	if tx.MethodID != "" && tx.MethodID != "0x" {
		return tx.MethodID
	}
	return "transfer"
}
