package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	health "github.com/hellofresh/health-go/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/log"
	"github.com/sebastienferry/mongo-opcode-emulator/internal/pkg/metrics"
)

// Pinger is satisfied by the MongoDB target.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(removeApi *RemoveApi, healthHandler http.Handler) *gin.Engine {

	router := gin.Default()
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	router.GET("/status", gin.WrapH(healthHandler))

	// Legacy operations api
	router.POST("/remove", removeApi.Remove)

	return router
}

// StartApi serves the router in the background. The returned server is
// stopped with Shutdown.
func StartApi(listen string, router http.Handler) *http.Server {
	server := &http.Server{
		Addr:              listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("api listening on ", listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("api server stopped: ", err)
		}
	}()
	return server
}

func CreateHealthCheckHandler(target Pinger) (http.Handler, error) {

	h, err := health.New(health.WithComponent(health.Component{
		Name:    "mongo-opcode-emulator",
		Version: "v1.0",
	}), health.WithChecks(
		health.Config{
			Name:    "mongodb-target",
			Timeout: time.Second * 5,
			Check: func(ctx context.Context) error {
				return target.Ping(ctx)
			},
		},
	))
	if err != nil {
		return nil, err
	}
	return h.Handler(), nil
}
