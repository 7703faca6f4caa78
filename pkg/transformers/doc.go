// Package transformers provides the column transformers of leaprdt.
//
// Every transformer implements core.Transformer and core.Snapshotter:
//
//   - FloatFormatter: numerical values, with optional scaling and clipping
//   - FrequencyEncoder: categories as frequency-sized intervals of [0, 1)
//   - OneHotEncoder: one indicator column per category
//   - LabelEncoder: categories as integer codes
//   - BinaryEncoder: booleans as 0 and 1
//   - UnixTimestampEncoder: datetimes as offsets from an origin
//   - AnonymizedIdentifier: identifiers dropped and regenerated on reverse
//
// Transformers are registered by name so they can be selected from
// configuration and restored from snapshots.
package transformers
