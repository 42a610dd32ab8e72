package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/mealprep-backend/pkg/logger"
)

// Expirer closes subscriptions whose delivery window has elapsed.
type Expirer interface {
	ExpireEnded(ctx context.Context) (int64, error)
}

// SubscriptionExpiryJobParams configures the expiry job.
type SubscriptionExpiryJobParams struct {
	Logger  *logger.Logger
	Expirer Expirer
}

type subscriptionExpiryJob struct {
	logg    *logger.Logger
	expirer Expirer
}

// NewSubscriptionExpiryJob builds the job moving ended subscriptions from active to expired.
func NewSubscriptionExpiryJob(params SubscriptionExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Expirer == nil {
		return nil, fmt.Errorf("expirer required")
	}
	return &subscriptionExpiryJob{logg: params.Logger, expirer: params.Expirer}, nil
}

func (j *subscriptionExpiryJob) Name() string { return "subscription-expiry" }

func (j *subscriptionExpiryJob) Run(ctx context.Context) error {
	expired, err := j.expirer.ExpireEnded(ctx)
	if err != nil {
		return fmt.Errorf("expire ended subscriptions: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "expired", expired), "subscription expiry complete")
	return nil
}
