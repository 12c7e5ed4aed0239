/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	three := 3

	tests := []struct {
		name         string
		labels       map[string]string
		wantIdentity *GpuIdentity
		wantOccupied bool
		wantErr      bool
	}{
		{
			name: "Non-MIG GPU with vendor prefix",
			labels: map[string]string{
				"Hostname":  "Node1",
				"gpu":       "0",
				"modelName": "NVIDIA A100",
			},
			wantIdentity: &GpuIdentity{Node: "node1", GpuIndex: 0, Product: "a100"},
		},
		{
			name: "Occupied GPU",
			labels: map[string]string{
				"Hostname":     "node1",
				"gpu":          "1",
				"modelName":    "NVIDIA A100",
				"exported_pod": "jupyter-js-lee---a4b212d2",
			},
			wantIdentity: &GpuIdentity{Node: "node1", GpuIndex: 1, Product: "a100"},
			wantOccupied: true,
		},
		{
			name: "MIG slice",
			labels: map[string]string{
				"Hostname":      "node2",
				"gpu":           "0",
				"GPU_I_PROFILE": "2g.20gb",
				"GPU_I_ID":      "3",
			},
			wantIdentity: &GpuIdentity{Node: "node2", GpuIndex: 0, MigSlice: &three, Product: "2g.20gb"},
		},
		{
			name: "MIG profile without slice id is malformed",
			labels: map[string]string{
				"Hostname":      "node2",
				"gpu":           "0",
				"GPU_I_PROFILE": "2g.20gb",
			},
			wantErr: true,
		},
		{
			name: "MIG profile with unparseable slice id is malformed",
			labels: map[string]string{
				"Hostname":      "node2",
				"gpu":           "0",
				"GPU_I_PROFILE": "2g.20gb",
				"GPU_I_ID":      "abc",
			},
			wantErr: true,
		},
		{
			name: "Sample without identity labels is skipped",
			labels: map[string]string{
				"Hostname": "node1",
				"gpu":      "0",
			},
		},
		{
			name: "Absent gpu label defaults to index 0",
			labels: map[string]string{
				"Hostname":  "node1",
				"modelName": "NVIDIA A100",
			},
			wantIdentity: &GpuIdentity{Node: "node1", GpuIndex: 0, Product: "a100"},
		},
		{
			name: "Unparseable gpu label uses the sentinel",
			labels: map[string]string{
				"Hostname":  "node1",
				"gpu":       "oops",
				"modelName": "NVIDIA A100",
			},
			wantIdentity: &GpuIdentity{Node: "node1", GpuIndex: -1, Product: "a100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, occupied, err := Normalize(RawSample{Labels: tt.labels})
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedSample)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIdentity, identity)
			assert.Equal(t, tt.wantOccupied, occupied)
		})
	}
}

func TestNormalize_WhitespaceAndCaseCollapse(t *testing.T) {
	first, _, err := Normalize(RawSample{Labels: map[string]string{
		"Hostname":  "Node1",
		"gpu":       "0",
		"modelName": "NVIDIA A100",
	}})
	require.NoError(t, err)
	second, _, err := Normalize(RawSample{Labels: map[string]string{
		"Hostname":  "  node1 ",
		"gpu":       "0",
		"modelName": "NVIDIA a100  ",
	}})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOwnerPod(t *testing.T) {
	pod, ok := OwnerPod(RawSample{Labels: map[string]string{"exported_pod": "jupyter-a-b-c"}})
	assert.True(t, ok)
	assert.Equal(t, "jupyter-a-b-c", pod)

	_, ok = OwnerPod(RawSample{Labels: map[string]string{}})
	assert.False(t, ok)
}

func TestOwnerNamespace(t *testing.T) {
	assert.Equal(t, "ml", OwnerNamespace(RawSample{Labels: map[string]string{"exported_namespace": "ml"}}))
	assert.Equal(t, "ops", OwnerNamespace(RawSample{Labels: map[string]string{"namespace": "ops"}}))
	assert.Equal(t, "default", OwnerNamespace(RawSample{Labels: map[string]string{}}))
}

func TestUserNameFromPod(t *testing.T) {
	tests := []struct {
		name     string
		podName  string
		wantUser string
		wantOk   bool
	}{
		{
			name:     "Notebook pod",
			podName:  "jupyter-js-lee---a4b212d2",
			wantUser: "js.lee",
			wantOk:   true,
		},
		{
			name:    "Wrong prefix",
			podName: "training-js-lee",
		},
		{
			name:    "Single segment",
			podName: "jupyter-jslee",
		},
		{
			name:    "Empty segment",
			podName: "jupyter--lee",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, ok := UserNameFromPod(tt.podName, "jupyter-")
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantUser, user)
		})
	}
}
