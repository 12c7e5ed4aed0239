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
	"k8s.io/klog/v2"
)

const (
	pvBindWaitTimeout  = 60 * time.Second
	pvBindWaitInterval = 2 * time.Second

	defaultWorkspaceStorage = "1Gi"
)

// CreateWorkspacePvc creates a dynamically provisioned RWX claim for a
// new workspace and returns the name of the volume it gets bound to.
func (c *Client) CreateWorkspacePvc(ctx context.Context, pvcName string) (string, error) {
	pvc := &corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{
			Name:      pvcName,
			Namespace: c.namespace,
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteMany},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{
					corev1.ResourceStorage: resource.MustParse(defaultWorkspaceStorage),
				},
			},
		},
	}
	_, err := c.clientset.CoreV1().PersistentVolumeClaims(c.namespace).Create(ctx, pvc, metav1.CreateOptions{})
	if err != nil {
		return "", err
	}
	return c.waitForBoundPv(ctx, pvcName)
}

func (c *Client) waitForBoundPv(ctx context.Context, pvcName string) (string, error) {
	var pvName string
	err := wait.PollUntilContextTimeout(ctx, pvBindWaitInterval, pvBindWaitTimeout, true,
		func(ctx context.Context) (bool, error) {
			pvc, err := c.clientset.CoreV1().PersistentVolumeClaims(c.namespace).Get(ctx, pvcName, metav1.GetOptions{})
			if err != nil {
				return false, err
			}
			pvName = pvc.Spec.VolumeName
			return pvName != "", nil
		})
	if err != nil {
		return "", fmt.Errorf("pvc %s was not bound: %w", pvcName, err)
	}
	return pvName, nil
}

// CreateNfsVolume creates a statically bound PV/PVC pair pointing at an
// NFS export. The PVC selects the PV by label so the pair binds to each
// other and nothing else.
func (c *Client) CreateNfsVolume(ctx context.Context, pvName, pvcName, nfsServer, nfsPath, storageSize string) error {
	size, err := resource.ParseQuantity(storageSize)
	if err != nil {
		return fmt.Errorf("invalid storage size %q: %w", storageSize, err)
	}

	pv := &corev1.PersistentVolume{
		ObjectMeta: metav1.ObjectMeta{
			Name: pvName,
			Labels: map[string]string{
				"type": "nfs",
				"pv":   pvName,
			},
		},
		Spec: corev1.PersistentVolumeSpec{
			Capacity: corev1.ResourceList{
				corev1.ResourceStorage: size,
			},
			AccessModes:                   []corev1.PersistentVolumeAccessMode{corev1.ReadWriteMany},
			PersistentVolumeReclaimPolicy: corev1.PersistentVolumeReclaimRetain,
			PersistentVolumeSource: corev1.PersistentVolumeSource{
				NFS: &corev1.NFSVolumeSource{
					Server: nfsServer,
					Path:   nfsPath,
				},
			},
		},
	}

	emptyClass := ""
	pvc := &corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{
			Name:      pvcName,
			Namespace: c.namespace,
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			StorageClassName: &emptyClass,
			AccessModes:      []corev1.PersistentVolumeAccessMode{corev1.ReadWriteMany},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{
					corev1.ResourceStorage: size,
				},
			},
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{
					"type": "nfs",
					"pv":   pvName,
				},
			},
		},
	}

	if _, err = c.clientset.CoreV1().PersistentVolumes().Create(ctx, pv, metav1.CreateOptions{}); err != nil {
		return err
	}
	if _, err = c.clientset.CoreV1().PersistentVolumeClaims(c.namespace).Create(ctx, pvc, metav1.CreateOptions{}); err != nil {
		c.CleanupNfsVolume(ctx, pvName, pvcName)
		return err
	}
	return nil
}

// CleanupNfsVolume best-effort deletes a PV/PVC pair after a failed create.
func (c *Client) CleanupNfsVolume(ctx context.Context, pvName, pvcName string) {
	if err := c.DeletePvc(ctx, pvcName); err != nil {
		klog.Errorf("failed to clean up pvc %s: %v", pvcName, err)
	}
	if err := c.DeletePv(ctx, pvName); err != nil {
		klog.Errorf("failed to clean up pv %s: %v", pvName, err)
	}
}

func (c *Client) DeletePvc(ctx context.Context, pvcName string) error {
	return c.clientset.CoreV1().PersistentVolumeClaims(c.namespace).Delete(ctx, pvcName, metav1.DeleteOptions{})
}

func (c *Client) DeletePv(ctx context.Context, pvName string) error {
	return c.clientset.CoreV1().PersistentVolumes().Delete(ctx, pvName, metav1.DeleteOptions{})
}
