package cron

import (
	"context"
	"fmt"

	"github.com/antiquestore/antique-store-backend/pkg/logger"
	"github.com/antiquestore/antique-store-backend/pkg/metrics"
)

const warrantyExpiryJobName = "warranty-expiry"

type warrantyExpirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

type WarrantyExpiryJobParams struct {
	Logger     *logger.Logger
	Warranties warrantyExpirer
	Metrics    *metrics.CronJobMetrics
}

// NewWarrantyExpiryJob moves active warranties past their expiry date to
// expired.
func NewWarrantyExpiryJob(params WarrantyExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Warranties == nil {
		return nil, fmt.Errorf("warranty service required")
	}
	return &warrantyExpiryJob{
		logg:       params.Logger,
		warranties: params.Warranties,
		metrics:    params.Metrics,
	}, nil
}

type warrantyExpiryJob struct {
	logg       *logger.Logger
	warranties warrantyExpirer
	metrics    *metrics.CronJobMetrics
}

func (j *warrantyExpiryJob) Name() string { return warrantyExpiryJobName }

func (j *warrantyExpiryJob) Run(ctx context.Context) error {
	expired, err := j.warranties.ExpireOverdue(ctx)
	if err != nil {
		return fmt.Errorf("warranty expiry: %w", err)
	}
	j.metrics.AddProcessed(warrantyExpiryJobName, expired)
	j.logg.Info(j.logg.WithField(ctx, "rows_expired", expired), "warranty expiry sweep complete")
	return nil
}
