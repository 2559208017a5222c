package metrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/Huc06/Backend-Ecommerce/internal/aws"
)

// Metric names
const (
	MetricCheckout  = "Checkout"
	MetricReconcile = "PaymentReconcile"
)

// Recorder publishes outcome counters to CloudWatch. All methods are
// best-effort and nil-safe; a nil *Recorder records nothing.
type Recorder struct {
	client    aws.CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewRecorder returns a Recorder publishing under the given namespace.
func NewRecorder(client aws.CloudWatchAPI, namespace string) *Recorder {
	return &Recorder{
		client:    client,
		namespace: namespace,
		nowFunc:   time.Now,
	}
}

// Count emits one unit of the named metric with an outcome dimension.
func (r *Recorder) Count(ctx context.Context, metric, outcome string) error {
	if r == nil {
		return nil
	}
	now := r.nowFunc()
	one := 1.0
	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &r.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &metric,
				Timestamp:  &now,
				Value:      &one,
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: awsString("Outcome"), Value: &outcome},
				},
			},
		},
	})
	return err
}

func awsString(s string) *string { return &s }
