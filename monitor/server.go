package monitor

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server 调试HTTP服务
// 功能：提供健康检查、prometheus指标与停车场快照
// 说明：模拟主循环每步调用Publish发布快照，HTTP协程只读取已发布的快照
type Server struct {
	httpServer *http.Server
	registry   *prometheus.Registry
	metrics    *Metrics

	snapshot atomic.Pointer[structpb.Struct]
}

// NewServer 创建调试服务
// 参数：addr-监听地址，如":9100"
func NewServer(addr string) *Server {
	s := &Server{registry: prometheus.NewRegistry()}
	s.metrics = NewMetrics(s.registry)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", s.health)
	r.Get("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP)
	r.Route("/api/lot", func(r chi.Router) {
		r.Get("/snapshot", s.getSnapshot)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler 路由，供测试直接调用
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Publish 发布最新快照
func (s *Server) Publish(snapshot *structpb.Struct) {
	s.snapshot.Store(snapshot)
}

// Start 开始监听，Shutdown后返回nil
func (s *Server) Start() error {
	log.Infof("monitor listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("monitor shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot.Load()
	if snap == nil {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	body, err := protojson.Marshal(snap)
	if err != nil {
		log.Errorf("marshal snapshot: %v", err)
		http.Error(w, "marshal snapshot", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debugf("%s %s %d %v", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
