package dial

// NoopMetricsTracer is the zero-cost MetricsTracer used when no tracer is
// configured.
type NoopMetricsTracer struct{}

func (NoopMetricsTracer) QueueLength(int) {}
func (NoopMetricsTracer) JobStarted() {}
func (NoopMetricsTracer) JobCompleted(bool) {}
func (NoopMetricsTracer) AddressesCalculated(int) {}

var _ MetricsTracer = NoopMetricsTracer{}
