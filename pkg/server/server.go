/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	commonconfig "github.com/openkcloud/kcloud-manage/pkg/config"
	dbclient "github.com/openkcloud/kcloud-manage/pkg/database/client"
	"github.com/openkcloud/kcloud-manage/pkg/gpusync"
	"github.com/openkcloud/kcloud-manage/pkg/handlers"
	"github.com/openkcloud/kcloud-manage/pkg/k8sclient"
	commonklog "github.com/openkcloud/kcloud-manage/pkg/klog"
	"github.com/openkcloud/kcloud-manage/pkg/kube"
	"github.com/openkcloud/kcloud-manage/pkg/options"
	"github.com/openkcloud/kcloud-manage/pkg/telemetry"
)

type Server struct {
	opts       *options.Options
	httpServer *http.Server
	dbClient   *dbclient.Client
	kubeClient *kube.Client
	scheduler  *gpusync.Scheduler
	ctx        context.Context
	cancel     context.CancelFunc
	isInited   bool
}

// NewServer creates and returns a new Server instance.
func NewServer() (*Server, error) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	s := &Server{
		opts:   &options.Options{},
		ctx:    ctx,
		cancel: cancel,
	}
	if err := s.init(); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

// init performs the initial setup of the server: flag parsing, logging,
// configuration, database and Kubernetes clients, and the GPU sync loop.
func (s *Server) init() error {
	gin.SetMode(gin.ReleaseMode)
	var err error
	if err = s.opts.InitFlags(); err != nil {
		klog.ErrorS(err, "failed to parse flags")
		return err
	}
	if err = commonklog.Init(s.opts.LogfilePath, s.opts.LogFileSize); err != nil {
		klog.ErrorS(err, "failed to init logs")
		return err
	}
	if err = s.initConfig(); err != nil {
		klog.ErrorS(err, "failed to init config")
		return err
	}
	if s.dbClient, err = dbclient.NewClient(); err != nil {
		klog.ErrorS(err, "failed to init database client")
		return err
	}
	if err = s.dbClient.AutoMigrate(); err != nil {
		klog.ErrorS(err, "failed to migrate database schema")
		return err
	}
	clientset, _, err := k8sclient.NewClientSet(s.opts.KubeConfig)
	if err != nil {
		klog.ErrorS(err, "failed to init kubernetes client")
		return err
	}
	s.kubeClient = kube.NewClient(clientset, commonconfig.GetNamespace())

	syncer := gpusync.NewSyncer(s.dbClient, s.kubeClient)
	telemetryCli := telemetry.NewClient(
		commonconfig.GetTelemetryEndpoint(), commonconfig.GetTelemetryMetric())
	s.scheduler = gpusync.NewScheduler(syncer, telemetryCli)

	s.isInited = true
	return nil
}

// Start begins server operation: the GPU sync loop and the HTTP server.
// It blocks until a termination signal arrives, then shuts down.
func (s *Server) Start() {
	if !s.isInited {
		klog.Errorf("please init the server first")
		return
	}
	gin.EnableJsonDecoderDisallowUnknownFields()

	klog.Infof("starting kcloud-manage")
	if err := s.scheduler.Start(); err != nil {
		klog.ErrorS(err, "failed to start gpu sync")
		os.Exit(-1)
	}

	go func() {
		if err := s.startHttpServer(); err != nil && err != http.ErrServerClosed {
			klog.ErrorS(err, "failed to start http-server")
			os.Exit(-1)
		}
	}()

	<-s.ctx.Done()
	s.Stop()
}

// Stop gracefully shuts down the HTTP server and the sync loop.
func (s *Server) Stop() {
	defer s.cancel()
	klog.Info("shutting down http server...")
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			klog.ErrorS(err, "failed to shutdown http server")
		}
	}
	s.scheduler.Stop()
	s.dbClient.Close()
	klog.Info("kcloud-manage is stopped")
	klog.Flush()
}

func (s *Server) initConfig() error {
	fullPath, err := filepath.Abs(s.opts.Config)
	if err != nil {
		return err
	}
	if err = commonconfig.LoadConfig(fullPath); err != nil {
		return fmt.Errorf("config path: %s, err: %v", fullPath, err)
	}
	return nil
}

func (s *Server) startHttpServer() error {
	if commonconfig.GetServerPort() <= 0 {
		return fmt.Errorf("the server port is not defined")
	}
	handler, err := handlers.InitHttpHandlers(s.dbClient, s.kubeClient)
	if err != nil {
		return err
	}
	addr := fmt.Sprintf(":%d", commonconfig.GetServerPort())
	s.httpServer = &http.Server{Addr: addr, Handler: handler}
	klog.Infof("http-server listen port: %d", commonconfig.GetServerPort())
	return s.httpServer.ListenAndServe()
}
