package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/sliink/formatbridge/internal/api/docs"
	"github.com/sliink/formatbridge/internal/core"
	"github.com/sliink/formatbridge/internal/model"
)

// API is the REST surface of the format bridge.
type API struct {
	store    *core.TransactionStore
	bus      *core.EventBus
	exporter *core.Exporter
	router   *gin.Engine
	server   *http.Server
	host     string
	port     int
	logger   zerolog.Logger
}

// NewAPI creates the API and registers its routes.
// @title           Format Bridge API
// @version         1.0
// @description     REST and streaming surface for the CSV/XML/JSON format bridge

// @host      localhost:8080
// @BasePath  /
func NewAPI(store *core.TransactionStore, bus *core.EventBus, exporter *core.Exporter, host string, port int, logger zerolog.Logger) *API {
	docs.SwaggerInfo.Title = "Format Bridge API"
	docs.SwaggerInfo.Description = "REST and streaming surface for the CSV/XML/JSON format bridge"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", host, port)
	docs.SwaggerInfo.Schemes = []string{"http"}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	a := &API{
		store:    store,
		bus:      bus,
		exporter: exporter,
		router:   router,
		host:     host,
		port:     port,
		logger:   logger.With().Str("component", "api").Logger(),
	}

	a.setupRoutes()
	return a
}

func (a *API) setupRoutes() {
	a.router.GET("/", a.dashboard)
	a.router.GET("/health", a.healthCheck)

	apiGroup := a.router.Group("/api")
	{
		apiGroup.POST("/transactions", a.submitTransaction)
		apiGroup.GET("/transactions", a.listTransactions)
		apiGroup.POST("/export", a.exportTransactions)
		apiGroup.POST("/publish/:topic", a.publishMessage)
		apiGroup.GET("/subscribe/:topic", a.subscribeTopic)
		apiGroup.GET("/topics", a.listTopics)
	}

	a.router.GET("/ws/subscribe/:topic", a.subscribeWebsocket)

	a.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Router exposes the gin engine, mainly for tests.
func (a *API) Router() http.Handler {
	return a.router
}

// Start starts the HTTP server and blocks until it exits.
func (a *API) Start() error {
	a.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.host, a.port),
		Handler: a.router,
	}
	return a.server.ListenAndServe()
}

// Stop shuts the HTTP server down gracefully.
func (a *API) Stop(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// healthCheck handles GET /health
// @Summary      Health check
// @Description  Check if the bridge is running
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (a *API) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// submitTransaction handles POST /api/transactions
// @Summary      Submit a transaction
// @Description  Store one transaction record; fields are free-form text
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        record  body      map[string]string  true  "Transaction record"
// @Success      201     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]string
// @Router       /api/transactions [post]
func (a *API) submitTransaction(c *gin.Context) {
	rec := model.NewRecord()
	if err := c.ShouldBindJSON(rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "body must be a JSON object of transaction fields"})
		return
	}

	txn := a.store.Submit(rec)
	c.JSON(http.StatusCreated, gin.H{
		"status":      "ok",
		"message":     fmt.Sprintf("transaction %d stored", txn.ID),
		"transaction": txn,
	})
}

// listTransactions handles GET /api/transactions
// @Summary      List transactions
// @Description  All stored transactions in insertion order
// @Tags         transactions
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/transactions [get]
func (a *API) listTransactions(c *gin.Context) {
	txns := a.store.List()
	if txns == nil {
		txns = []model.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":        len(txns),
		"transactions": txns,
	})
}

// exportTransactions handles POST /api/export
// @Summary      Export the transaction store
// @Description  Write a snapshot of all transactions to the exports directory
// @Tags         transactions
// @Produce      json
// @Param        format  query     string  true  "Export format (csv, json, or xml)"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /api/export [post]
func (a *API) exportTransactions(c *gin.Context) {
	file, count, err := a.exporter.Export(c.Query("format"))
	if err != nil {
		var fe *model.FormatError
		if errors.As(err, &fe) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": fe.Error()})
			return
		}
		a.logger.Error().Err(err).Msg("export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "export failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"file":   file,
		"count":  count,
	})
}

// publishMessage handles POST /api/publish/:topic
// @Summary      Publish a message
// @Description  Append an arbitrary payload to a topic, creating it if absent
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        topic    path      string                  true  "Topic name"
// @Param        payload  body      map[string]interface{}  true  "Message payload"
// @Success      201      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Router       /api/publish/{topic} [post]
func (a *API) publishMessage(c *gin.Context) {
	var payload any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "body must be valid JSON"})
		return
	}

	topic := c.Param("topic")
	msg := a.bus.Publish(topic, payload)
	c.JSON(http.StatusCreated, gin.H{
		"status": "ok",
		"topic":  topic,
		"offset": msg.Offset,
	})
}

// subscribeTopic handles GET /api/subscribe/:topic
// @Summary      Subscribe to a topic
// @Description  Server-sent event stream (replay plus live) when the request accepts text/event-stream, otherwise a one-shot snapshot of the topic history
// @Tags         events
// @Produce      json
// @Param        topic  path      string  true  "Topic name"
// @Success      200    {object}  map[string]interface{}
// @Router       /api/subscribe/{topic} [get]
func (a *API) subscribeTopic(c *gin.Context) {
	topic := c.Param("topic")

	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		a.streamTopic(c, topic)
		return
	}

	msgs := a.bus.Snapshot(topic)
	if msgs == nil {
		msgs = []model.Message{}
	}
	c.JSON(http.StatusOK, gin.H{
		"topic":    topic,
		"messages": msgs,
	})
}

// listTopics handles GET /api/topics
// @Summary      List topics
// @Description  Message count per topic
// @Tags         events
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/topics [get]
func (a *API) listTopics(c *gin.Context) {
	c.JSON(http.StatusOK, a.bus.Topics())
}
