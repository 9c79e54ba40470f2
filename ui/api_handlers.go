package ui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taguchi/app"
	domainDoe "taguchi/domain/doe"
	"taguchi/domain/oa"
	"taguchi/domain/stats"
	"taguchi/internal/analysis"
	"taguchi/internal/catalogue"
)

// matrixRequest is the body shared by the read-only analysis endpoints
type matrixRequest struct {
	Matrix          [][]int `json:"matrix" binding:"required"`
	Name            string  `json:"name"`
	ClaimedStrength int     `json:"claimedStrength"`
	MaxCheck        int     `json:"maxCheck"`
}

func (a *App) registerAPI(api *gin.RouterGroup) {
	api.POST("/inspect", a.handleInspect)
	api.POST("/import/validate", a.handleValidateImport)
	api.POST("/balance", a.handleBalance)
	api.POST("/correlation", a.handleCorrelation)
	api.POST("/classify", a.handleClassify)
	api.POST("/verify", a.handleVerify)
	api.POST("/strength", a.handleComputeStrength)

	api.GET("/constructions", a.handleSuggestConstructions)
	api.POST("/build/validate", a.handleValidateBuild)
	api.POST("/build", a.handleBuild)

	api.POST("/analyze", a.handleAnalyze)

	api.GET("/catalogue", a.handleListCatalogue)
	api.GET("/catalogue/:name", a.handleGetStandardArray)

	api.POST("/arrays", a.handleSaveArray)
	api.GET("/arrays", a.handleListArrays)
	api.GET("/arrays/:id", a.handleGetArray)
	api.POST("/arrays/:id/analyses", a.handleAnalyzeStored)
	api.GET("/arrays/:id/analyses", a.handleListAnalyses)
}

func bindMatrix(c *gin.Context) (*matrixRequest, bool) {
	var req matrixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return nil, false
	}
	return &req, true
}

func (a *App) handleInspect(c *gin.Context) {
	req, ok := bindMatrix(c)
	if !ok {
		return
	}
	result, err := a.service.Inspect(c.Request.Context(), req.Matrix, app.InspectOptions{
		Name:            req.Name,
		ClaimedStrength: req.ClaimedStrength,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *App) handleValidateImport(c *gin.Context) {
	req, ok := bindMatrix(c)
	if !ok {
		return
	}
	result, err := a.service.ValidateImport(req.Matrix)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *App) handleBalance(c *gin.Context) {
	req, ok := bindMatrix(c)
	if !ok {
		return
	}
	result, err := a.service.Balance(req.Matrix)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report":     result,
		"balanced":   result.Balanced(),
		"unbalanced": unbalancedOrEmpty(result),
	})
}

func (a *App) handleCorrelation(c *gin.Context) {
	req, ok := bindMatrix(c)
	if !ok {
		return
	}
	result, err := a.service.Correlation(req.Matrix)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"correlation":    result,
		"maxCorrelation": result.MaxAbsOffDiagonal(),
	})
}

func (a *App) handleClassify(c *gin.Context) {
	req, ok := bindMatrix(c)
	if !ok {
		return
	}
	method, err := a.service.Classify(req.Matrix)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"algorithm": method})
}

func (a *App) handleVerify(c *gin.Context) {
	req, ok := bindMatrix(c)
	if !ok {
		return
	}
	result, err := a.service.Verify(c.Request.Context(), req.Matrix, req.ClaimedStrength)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *App) handleComputeStrength(c *gin.Context) {
	req, ok := bindMatrix(c)
	if !ok {
		return
	}
	strength, err := a.service.ComputeStrength(c.Request.Context(), req.Matrix, req.MaxCheck)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"strength": strength})
}

func (a *App) handleSuggestConstructions(c *gin.Context) {
	levels, err := strconv.Atoi(c.Query("levels"))
	if err != nil {
		abortWithBadRequest(c, err)
		return
	}
	strength, err := strconv.Atoi(c.DefaultQuery("strength", "2"))
	if err != nil {
		abortWithBadRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"constructions": a.service.SuggestConstructions(levels, strength)})
}

func (a *App) handleValidateBuild(c *gin.Context) {
	var req oa.BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, a.service.ValidateBuildParameters(req))
}

func (a *App) handleBuild(c *gin.Context) {
	var req oa.BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}
	data, err := a.service.Build(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, data)
}

func (a *App) handleAnalyze(c *gin.Context) {
	var req domainDoe.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}
	result, err := a.service.RunAnalysis(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *App) handleListCatalogue(c *gin.Context) {
	var filter catalogue.Filter
	for key, target := range map[string]**int{
		"minRuns":    &filter.MinRuns,
		"maxRuns":    &filter.MaxRuns,
		"levels":     &filter.Levels,
		"minFactors": &filter.MinFactors,
	} {
		raw, ok := c.GetQuery(key)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			abortWithBadRequest(c, err)
			return
		}
		*target = &v
	}
	c.JSON(http.StatusOK, gin.H{"arrays": a.service.SearchStandardArrays(filter)})
}

func (a *App) handleGetStandardArray(c *gin.Context) {
	data, err := a.service.GetStandardArray(c.Request.Context(), c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (a *App) handleSaveArray(c *gin.Context) {
	var data oa.OAData
	if err := c.ShouldBindJSON(&data); err != nil {
		abortWithBadRequest(c, err)
		return
	}
	id, err := a.service.SaveArray(c.Request.Context(), data)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (a *App) handleListArrays(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		abortWithBadRequest(c, err)
		return
	}
	arrays, err := a.service.ListArrays(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"arrays": arrays})
}

func (a *App) handleGetArray(c *gin.Context) {
	data, err := a.service.GetArray(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (a *App) handleAnalyzeStored(c *gin.Context) {
	var req domainDoe.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}
	result, err := a.service.AnalyzeStored(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (a *App) handleListAnalyses(c *gin.Context) {
	analyses, err := a.service.ListAnalyses(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": analyses})
}

func unbalancedOrEmpty(r *stats.BalanceReport) []int {
	out := analysis.UnbalancedFactors(*r)
	if out == nil {
		return []int{}
	}
	return out
}
