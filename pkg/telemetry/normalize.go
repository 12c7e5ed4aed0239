/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package telemetry

import (
	"errors"
	"strconv"
	"strings"
)

// DCGM exporter labels consumed by the sync loop.
const (
	LabelHostname    = "Hostname"
	LabelGpu         = "gpu"
	LabelMigProfile  = "GPU_I_PROFILE"
	LabelMigSliceId  = "GPU_I_ID"
	LabelModelName   = "modelName"
	LabelExportedPod = "exported_pod"
	LabelExportedNs  = "exported_namespace"
	LabelNamespace   = "namespace"
)

// modelVendorPrefix is stripped from non-MIG product names.
const modelVendorPrefix = "NVIDIA "

// ErrMalformedSample marks a telemetry sample that is internally
// inconsistent, such as a MIG profile without a slice id. The sample is
// dropped; the cycle continues.
var ErrMalformedSample = errors.New("malformed telemetry sample")

// GpuIdentity is the canonical identity of one physical GPU or MIG
// slice. Node and Product are trimmed lower-case, GpuIndex is -1 when
// the exporter reports an unparseable index, and MigSlice is nil for
// whole GPUs. A nil MigSlice and slice 0 are distinct identities.
//
// An absent gpu label defaults the index to 0, so two index-less GPUs
// on one node would collapse into a single identity. DCGM always sets
// the label in practice.
type GpuIdentity struct {
	Node     string
	GpuIndex int
	MigSlice *int
	Product  string
}

// Normalize maps a raw sample onto its canonical GPU identity and
// occupancy. It returns (nil, false, nil) for series that do not carry
// a GPU identity at all, and ErrMalformedSample for a MIG profile
// without a slice id.
func Normalize(sample RawSample) (*GpuIdentity, bool, error) {
	labels := sample.Labels
	identity := &GpuIdentity{
		Node:     strings.ToLower(strings.TrimSpace(labels[LabelHostname])),
		GpuIndex: parseGpuIndex(labels),
	}

	switch {
	case labels[LabelMigProfile] != "":
		sliceValue, ok := labels[LabelMigSliceId]
		if !ok || sliceValue == "" {
			return nil, false, ErrMalformedSample
		}
		slice, err := strconv.Atoi(sliceValue)
		if err != nil {
			return nil, false, ErrMalformedSample
		}
		identity.MigSlice = &slice
		identity.Product = canonicalProduct(labels[LabelMigProfile])
	case labels[LabelModelName] != "":
		model := strings.TrimPrefix(labels[LabelModelName], modelVendorPrefix)
		identity.Product = canonicalProduct(model)
	default:
		// Not a GPU identity series.
		return nil, false, nil
	}

	return identity, labels[LabelExportedPod] != "", nil
}

func canonicalProduct(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func parseGpuIndex(labels map[string]string) int {
	value, ok := labels[LabelGpu]
	if !ok {
		return 0
	}
	index, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || index < 0 {
		return -1
	}
	return index
}

// OwnerPod returns the pod the sampled GPU is allocated to, if any.
func OwnerPod(sample RawSample) (string, bool) {
	pod := sample.Labels[LabelExportedPod]
	return pod, pod != ""
}

// OwnerNamespace returns the namespace of the owning pod, defaulting
// to "default" when the exporter reports none.
func OwnerNamespace(sample RawSample) string {
	if ns := sample.Labels[LabelExportedNs]; ns != "" {
		return ns
	}
	if ns := sample.Labels[LabelNamespace]; ns != "" {
		return ns
	}
	return "default"
}

// RawGpuName returns the human-readable GPU name of a sample before
// canonicalization, used for pod GPU summaries.
func RawGpuName(sample RawSample) string {
	if profile := sample.Labels[LabelMigProfile]; profile != "" {
		return profile
	}
	return sample.Labels[LabelModelName]
}
