package routes

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"instagram-agent-platform/internal/agent"
	"instagram-agent-platform/internal/config"
	"instagram-agent-platform/internal/logger"
	"instagram-agent-platform/internal/queue"
	"instagram-agent-platform/internal/storage"
	"instagram-agent-platform/middleware"
	"instagram-agent-platform/models"
	"instagram-agent-platform/services"
	"instagram-agent-platform/utils"
)

// ConfigUpdateRequest is a partial update: only provided fields override
// the stored blueprint, mirroring the dashboard's save payload.
type ConfigUpdateRequest struct {
	ContentTheme *string   `json:"contentTheme"`
	Tone         *string   `json:"tone"`
	Hashtags     *[]string `json:"hashtags"`
	CallToAction *string   `json:"callToAction"`
	ImagePrompt  *string   `json:"imagePrompt"`
	AutoPublish  *bool     `json:"autoPublish"`
	DailyTime    *string   `json:"dailyTime"`
}

func SetupAgentRoutes(router *gin.Engine, cfg *config.Config, store storage.ConfigStore, scheduler *agent.Scheduler, pipeline *agent.Pipeline, asynqClient *asynq.Client, notifier *services.RunAlertNotifier) {
	api := router.Group("/api")

	api.GET("/config", handleGetConfig(store))
	api.POST("/config", handleUpdateConfig(store))
	api.GET("/post/latest", handleLatestPost(store))

	triggers := api.Group("")
	triggers.Use(middleware.TriggerAuth(cfg.CronSecret))
	triggers.POST("/run", handleRun(pipeline))
	triggers.POST("/run/async", handleRunAsync(asynqClient))
	triggers.GET("/cron/daily", handleCronDaily(scheduler, pipeline, notifier))
}

func handleGetConfig(store storage.ConfigStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := store.Get(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "failed to load configuration", err.Error())
			return
		}
		c.JSON(http.StatusOK, current)
	}
}

func handleUpdateConfig(store storage.ConfigStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload ConfigUpdateRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.RespondWithBadRequest(c, "invalid request body", err.Error())
			return
		}

		if payload.ContentTheme == nil || strings.TrimSpace(*payload.ContentTheme) == "" ||
			payload.Tone == nil || strings.TrimSpace(*payload.Tone) == "" {
			utils.RespondWithBadRequest(c, "contentTheme and tone are required.", nil)
			return
		}

		if payload.DailyTime != nil {
			if _, _, err := agent.ParseDailyTime(*payload.DailyTime); err != nil {
				utils.RespondWithBadRequest(c, "dailyTime must be HH:MM in 24-hour form", err.Error())
				return
			}
		}

		updated, err := store.Update(c.Request.Context(), func(current models.AgentConfig) models.AgentConfig {
			current.ContentTheme = strings.TrimSpace(*payload.ContentTheme)
			current.Tone = strings.TrimSpace(*payload.Tone)
			if payload.Hashtags != nil {
				current.Hashtags = filterHashtags(*payload.Hashtags)
			}
			if payload.CallToAction != nil {
				current.CallToAction = *payload.CallToAction
			}
			if payload.ImagePrompt != nil {
				current.ImagePrompt = *payload.ImagePrompt
			}
			if payload.AutoPublish != nil {
				current.AutoPublish = *payload.AutoPublish
			}
			if payload.DailyTime != nil {
				current.DailyTime = *payload.DailyTime
			}
			return current
		})
		if err != nil {
			utils.RespondWithInternalError(c, "failed to save configuration", err.Error())
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func handleLatestPost(store storage.ConfigStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := store.Get(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "failed to load configuration", err.Error())
			return
		}
		if current.LastPost == nil {
			utils.RespondWithNotFound(c, "no post has been generated yet")
			return
		}
		c.JSON(http.StatusOK, current.LastPost)
	}
}

func handleRun(pipeline *agent.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var opts agent.RunOptions
		// Empty body means a preview run without publishing.
		if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
			utils.RespondWithBadRequest(c, "invalid request body", err.Error())
			return
		}

		result, err := pipeline.Run(c.Request.Context(), opts)
		if err != nil {
			respondPipelineError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func handleRunAsync(asynqClient *asynq.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var opts agent.RunOptions
		if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
			utils.RespondWithBadRequest(c, "invalid request body", err.Error())
			return
		}

		task, err := queue.NewAgentRunTask(opts.ForcePublish, "manual-async")
		if err != nil {
			utils.RespondWithInternalError(c, "failed to build run task", err.Error())
			return
		}

		info, err := asynqClient.EnqueueContext(c.Request.Context(), task)
		if err != nil {
			utils.RespondWithInternalError(c, "failed to enqueue run", err.Error())
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"task_id": info.ID,
			"queue":   info.Queue,
		})
	}
}

func handleCronDaily(scheduler *agent.Scheduler, pipeline *agent.Pipeline, notifier *services.RunAlertNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		evaluation, err := scheduler.Evaluate(c.Request.Context(), time.Now())
		if err != nil {
			utils.RespondWithInternalError(c, "failed to evaluate schedule", err.Error())
			return
		}

		if !evaluation.Ready {
			c.JSON(http.StatusOK, gin.H{
				"ok":     true,
				"ran":    false,
				"reason": evaluation.Reason,
				"config": evaluation.Config,
			})
			return
		}

		result, err := pipeline.Run(c.Request.Context(), agent.RunOptions{ForcePublish: true})
		if err != nil {
			logger.Error("Cron-triggered run failed", "error", err)
			notifier.NotifyRunFailed("cron", err)
			respondPipelineError(c, err)
			return
		}
		if len(result.Warnings) > 0 {
			notifier.NotifyDegradedRun("cron", result)
		}

		c.JSON(http.StatusOK, gin.H{
			"ok":       true,
			"ran":      true,
			"post":     result.Post,
			"warnings": result.Warnings,
		})
	}
}

func respondPipelineError(c *gin.Context, err error) {
	var pipelineErr *agent.PipelineError
	if errors.As(err, &pipelineErr) {
		utils.RespondWithError(c, http.StatusInternalServerError, "pipeline_error", pipelineErr.Error(), gin.H{
			"stage": string(pipelineErr.Stage),
		})
		return
	}
	utils.RespondWithInternalError(c, "agent run failed", err.Error())
}

func filterHashtags(tags []string) []string {
	filtered := make([]string, 0, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) != "" {
			filtered = append(filtered, strings.TrimSpace(tag))
		}
	}
	return filtered
}
