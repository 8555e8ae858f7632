// Package distributions provides the feature models and the clustering
// prior used by product mixtures.
//
// Every feature kind satisfies Model[V, G]: V is the kind's value type and
// G its per-cluster sufficient statistic (a group). Classifier keeps one
// group per cluster slot and applies a model's group operations by slot
// index. Clustering implements the Pitman-Yor partition prior over the same
// slots.
//
// Removing a slot moves the last slot into its place (swap-with-last), in
// Clustering and Classifier alike, so slot indices stay aligned when both
// are updated in the same order.
//
// Scores are natural-log predictive probabilities as float32.
package distributions
