package metrics

// SchemaCompileBuckets defines latency buckets for schema compilation.
var SchemaCompileBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}

// ValidationDurationBuckets defines latency buckets for document validation, sized for
// documents from a handful of components up to large aggregates.
var ValidationDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// DocumentSizeBucketBoundaries defines size buckets in bytes for validated documents.
var DocumentSizeBucketBoundaries = []float64{1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000}
