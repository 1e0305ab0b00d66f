package inventory

import (
	"fmt"
	"strings"
)

// DefaultProbeSetVersion labels the built-in storage type list.
const DefaultProbeSetVersion = "2024-11"

// defaultStorageTypes lists every StorageType dimension S3 publishes
// BucketSizeBytes under. CloudWatch offers no total across classes, so a class
// missing here is silently left out of bucket sizes.
var defaultStorageTypes = []string{
	"StandardStorage",
	"StandardIAStorage",
	"IntelligentTieringFAStorage",
	"IntelligentTieringIAStorage",
	"IntelligentTieringAAStorage",
	"IntelligentTieringAIAStorage",
	"IntelligentTieringDAAStorage",
	"OneZoneIAStorage",
	"ReducedRedundancyStorage",
	"GlacierInstantRetrievalStorage",
	"GlacierStorage",
	"DeepArchiveStorage",
	"GlacierStagingStorage",
	"GlacierObjectOverhead",
	"GlacierS3ObjectOverhead",
}

// ProbeSet is the ordered list of storage type dimensions queried per bucket.
type ProbeSet struct {
	version string
	classes []string
}

// DefaultProbeSet returns the built-in storage type list.
func DefaultProbeSet() ProbeSet {
	return ProbeSet{
		version: DefaultProbeSetVersion,
		classes: append([]string(nil), defaultStorageTypes...),
	}
}

// NewProbeSet builds a probe set from a configured list. Blank or duplicate
// entries are rejected. An empty list yields the default set.
func NewProbeSet(version string, classes []string) (ProbeSet, error) {
	if len(classes) == 0 {
		return DefaultProbeSet(), nil
	}

	seen := make(map[string]struct{}, len(classes))
	out := make([]string, 0, len(classes))
	for i, c := range classes {
		c = strings.TrimSpace(c)
		if c == "" {
			return ProbeSet{}, fmt.Errorf("storage class #%d is empty", i+1)
		}
		if _, dup := seen[c]; dup {
			return ProbeSet{}, fmt.Errorf("storage class %q listed twice", c)
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	if version == "" {
		version = "custom"
	}
	return ProbeSet{version: version, classes: out}, nil
}

// Version returns the label of the list.
func (p ProbeSet) Version() string {
	return p.version
}

// Classes returns a copy of the storage type dimensions in query order.
func (p ProbeSet) Classes() []string {
	return append([]string(nil), p.classes...)
}

// Len returns the number of storage types.
func (p ProbeSet) Len() int {
	return len(p.classes)
}
