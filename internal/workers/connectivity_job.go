// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/logger"
)

const defaultConnectivityInterval = 15 * time.Second

// ConnectivityJob probes the remote on a fixed interval so that the
// monitor notices both loss and recovery without a passive signal.
type ConnectivityJob struct {
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	logger   *logger.Logger
}

func NewConnectivityJob(prober Prober, interval, timeout time.Duration, logger *logger.Logger) *ConnectivityJob {
	if interval <= 0 {
		interval = defaultConnectivityInterval
	}
	return &ConnectivityJob{prober: prober, interval: interval, timeout: timeout, logger: logger}
}

func (j *ConnectivityJob) Name() string { return "connectivity" }

func (j *ConnectivityJob) Run(ctx context.Context) error {
	return every(j.logger.WithContext(ctx), j.interval, true, func(ctx context.Context) {
		online := j.prober.VerifyOnline(ctx, j.timeout)
		logger.FromContext(ctx).Debug().Str("func", "ConnectivityJob.Run").Bool("online", online).Msg("connectivity probed")
	})
}
