/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package kube

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/openkcloud/kcloud-manage/pkg/common"
)

const (
	workspaceContainerName = "server-container"
	workspacePort          = 8888
	workspaceMountPath     = "/home/jovyan/workspace"
	sharedMountPath        = "/home/share"

	podIpWaitTimeout  = 180 * time.Second
	podIpWaitInterval = 2 * time.Second
)

// jupyterCommand starts the notebook server bound to the workspace mount.
var jupyterCommand = []string{
	"jupyter lab --ip=0.0.0.0 --port=8888 --no-browser" +
		" --ServerApp.token='' --ServerApp.root_dir=" + workspaceMountPath,
}

// WorkspacePodSpec describes a workspace pod to create. GpuResource is
// the extended resource name (e.g. nvidia.com/mig-2g.20gb), empty for
// CPU-only workspaces.
type WorkspacePodSpec struct {
	PodName         string
	Image           string
	Cpu             string
	Memory          string
	GpuResource     string
	GpuCount        int64
	PvcName         string
	SharedPvcName   string
	ImagePullSecret string
}

// ReadPodRuntime returns the first container's cpu/memory limits and the
// pod IP. Missing limits come back as the N/A placeholder rather than an
// error so callers can persist something useful for a half-configured pod.
func (c *Client) ReadPodRuntime(ctx context.Context, podName, namespace string) (*PodRuntime, error) {
	if namespace == "" {
		namespace = c.namespace
	}
	pod, err := c.clientset.CoreV1().Pods(namespace).Get(ctx, podName, metav1.GetOptions{})
	if err != nil {
		return nil, err
	}
	runtime := &PodRuntime{
		Cpu:        common.UnknownLimit,
		Memory:     common.UnknownLimit,
		InternalIp: pod.Status.PodIP,
	}
	if len(pod.Spec.Containers) == 0 {
		return runtime, nil
	}
	limits := pod.Spec.Containers[0].Resources.Limits
	if cpu, ok := limits[corev1.ResourceCPU]; ok {
		runtime.Cpu = cpu.String()
	}
	if memory, ok := limits[corev1.ResourceMemory]; ok {
		runtime.Memory = memory.String()
	}
	return runtime, nil
}

// CreateWorkspacePod submits a workspace pod built from spec.
func (c *Client) CreateWorkspacePod(ctx context.Context, spec *WorkspacePodSpec) error {
	limits, err := buildLimits(spec)
	if err != nil {
		return err
	}

	volumes := []corev1.Volume{
		{
			Name: "storage-volume",
			VolumeSource: corev1.VolumeSource{
				PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
					ClaimName: spec.PvcName,
				},
			},
		},
	}
	mounts := []corev1.VolumeMount{
		{Name: "storage-volume", MountPath: workspaceMountPath},
	}
	if spec.SharedPvcName != "" {
		volumes = append(volumes, corev1.Volume{
			Name: "shared-volume",
			VolumeSource: corev1.VolumeSource{
				PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
					ClaimName: spec.SharedPvcName,
				},
			},
		})
		mounts = append(mounts, corev1.VolumeMount{Name: "shared-volume", MountPath: sharedMountPath})
	}

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.PodName,
			Namespace: c.namespace,
			Labels:    map[string]string{"app": "my-server"},
		},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{
					Name:         workspaceContainerName,
					Image:        spec.Image,
					Command:      []string{"bash", "-lc"},
					Args:         jupyterCommand,
					Ports:        []corev1.ContainerPort{{ContainerPort: workspacePort}},
					VolumeMounts: mounts,
					Resources:    corev1.ResourceRequirements{Limits: limits},
				},
			},
			Volumes:       volumes,
			RestartPolicy: corev1.RestartPolicyNever,
		},
	}
	if spec.ImagePullSecret != "" {
		pod.Spec.ImagePullSecrets = []corev1.LocalObjectReference{{Name: spec.ImagePullSecret}}
	}

	_, err = c.clientset.CoreV1().Pods(c.namespace).Create(ctx, pod, metav1.CreateOptions{})
	return err
}

func buildLimits(spec *WorkspacePodSpec) (corev1.ResourceList, error) {
	cpu, err := resource.ParseQuantity(spec.Cpu)
	if err != nil {
		return nil, fmt.Errorf("invalid cpu limit %q: %w", spec.Cpu, err)
	}
	memory, err := resource.ParseQuantity(spec.Memory)
	if err != nil {
		return nil, fmt.Errorf("invalid memory limit %q: %w", spec.Memory, err)
	}
	limits := corev1.ResourceList{
		corev1.ResourceCPU:    cpu,
		corev1.ResourceMemory: memory,
	}
	if spec.GpuResource != "" {
		limits[corev1.ResourceName(spec.GpuResource)] = *resource.NewQuantity(spec.GpuCount, resource.DecimalSI)
	}
	return limits, nil
}

// WaitForPodIP polls until the pod reports an internal IP.
func (c *Client) WaitForPodIP(ctx context.Context, podName string) (string, error) {
	var internalIp string
	err := wait.PollUntilContextTimeout(ctx, podIpWaitInterval, podIpWaitTimeout, true,
		func(ctx context.Context) (bool, error) {
			pod, err := c.clientset.CoreV1().Pods(c.namespace).Get(ctx, podName, metav1.GetOptions{})
			if err != nil {
				return false, err
			}
			internalIp = pod.Status.PodIP
			return internalIp != "", nil
		})
	if err != nil {
		return "", fmt.Errorf("pod %s did not receive an internal IP: %w", podName, err)
	}
	return internalIp, nil
}

// DeletePod removes the pod from the cluster.
func (c *Client) DeletePod(ctx context.Context, podName string) error {
	return c.clientset.CoreV1().Pods(c.namespace).Delete(ctx, podName, metav1.DeleteOptions{})
}
