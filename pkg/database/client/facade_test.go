/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcloud/kcloud-manage/pkg/common"
	"github.com/openkcloud/kcloud-manage/pkg/database/model"
)

func TestUserFacade(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	ctx := helper.CreateTestContext()

	user, err := helper.Client.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	created := &model.User{Email: "js.lee@example.com", Name: "js.lee", HashedPassword: "hash"}
	require.NoError(t, helper.Client.CreateUser(ctx, created))
	require.NotZero(t, created.ID)

	byEmail, err := helper.Client.GetUserByEmail(ctx, "js.lee@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "user", byEmail.Role)

	byName, err := helper.Client.GetUserByName(ctx, "js.lee")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, created.ID, byName.ID)
}

func TestFlavorFacade_MigIdentity(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	ctx := helper.CreateTestContext()

	three := 3
	require.NoError(t, helper.Client.CreateFlavor(ctx, &model.Flavor{
		GpuName: "2g.20gb", WorkerNode: "node1", GpuID: 0, MigID: &three,
	}))
	require.NoError(t, helper.Client.CreateFlavor(ctx, &model.Flavor{
		GpuName: "a100", WorkerNode: "node1", GpuID: 0,
	}))

	// MIG identity nil and a concrete slice never match each other.
	flavor, err := helper.Client.GetFlavorByIdentity(ctx, "node1", 0, nil, "2g.20gb")
	require.NoError(t, err)
	assert.Nil(t, flavor)

	flavor, err = helper.Client.GetFlavorByIdentity(ctx, "node1", 0, &three, "2g.20gb")
	require.NoError(t, err)
	require.NotNil(t, flavor)
	require.NotNil(t, flavor.MigID)
	assert.Equal(t, 3, *flavor.MigID)

	flavor, err = helper.Client.GetFlavorByIdentity(ctx, "node1", 0, nil, "a100")
	require.NoError(t, err)
	require.NotNil(t, flavor)
	assert.Nil(t, flavor.MigID)

	require.NoError(t, helper.Client.UpdateFlavorAvailable(ctx, flavor.ID, 1))
	flavor, err = helper.Client.GetFlavorByIdentity(ctx, "node1", 0, nil, "a100")
	require.NoError(t, err)
	assert.Equal(t, 1, flavor.Available)

	require.NoError(t, helper.Client.DeleteFlavor(ctx, flavor.ID))
	assert.EqualValues(t, 1, helper.Count(model.TableNameFlavor))
}

func TestServerFacade_TagQueries(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	ctx := helper.CreateTestContext()

	user := &model.User{Email: "owner@example.com", Name: "owner", HashedPassword: "hash"}
	require.NoError(t, helper.Client.CreateUser(ctx, user))

	legend := &model.Server{ServerName: "ws", PodName: "ws-abc", UserID: &user.ID, Tags: common.TagLegend, Status: common.StatusRunning}
	discovered := &model.Server{ServerName: "dev-pod", PodName: "dev-pod", Tags: common.TagDev, Status: common.StatusRunning}
	require.NoError(t, helper.Client.CreateServer(ctx, legend))
	require.NoError(t, helper.Client.CreateServer(ctx, discovered))

	server, err := helper.Client.GetNonLegendServerByPodName(ctx, "ws-abc")
	require.NoError(t, err)
	assert.Nil(t, server)

	server, err = helper.Client.GetLegendServerByPodName(ctx, "ws-abc")
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, legend.ID, server.ID)

	server, err = helper.Client.GetNonLegendServerByPodName(ctx, "dev-pod")
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, discovered.ID, server.ID)

	mine, err := helper.Client.ListServersByUserAndTag(ctx, user.ID, common.TagLegend)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "ws-abc", mine[0].PodName)

	server, err = helper.Client.GetServerByPodNameAndUser(ctx, "ws-abc", user.ID)
	require.NoError(t, err)
	require.NotNil(t, server)
}

func TestPvcFacade(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	ctx := helper.CreateTestContext()

	user := &model.User{Email: "owner@example.com", Name: "owner", HashedPassword: "hash"}
	require.NoError(t, helper.Client.CreateUser(ctx, user))

	pvc := &model.Pvc{UserID: user.ID, PvcName: "claim-data-1a2b3c4d", Pv: "pv-data-1a2b3c4d", Path: "/exports/data"}
	require.NoError(t, helper.Client.CreatePvc(ctx, pvc))

	listed, err := helper.Client.ListPvcsByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	got, err := helper.Client.GetPvcByNameAndUser(ctx, "claim-data-1a2b3c4d", user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pvc.ID, got.ID)

	got, err = helper.Client.GetPvcByNameAndUser(ctx, "claim-data-1a2b3c4d", user.ID+1)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, helper.Client.DeletePvc(ctx, pvc.ID))
	assert.EqualValues(t, 0, helper.Count(model.TableNamePvc))
}
