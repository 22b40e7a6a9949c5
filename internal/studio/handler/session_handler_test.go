package handler

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rick-johnn/TruckSigns.com/internal/config"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/canvas"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/repository"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/service"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/sse"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/testutil"
)

func setupSessionTest(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedTestUser(t, db, "test-user-001", "Test User", "user@test.com")

	logger := zap.NewNop()
	repos := repository.NewRepositories(db)
	designSvc := service.NewDesignService(repos.Design, nil, "", logger)

	fonts, err := canvas.NewFontLibrary("", logger)
	if err != nil {
		t.Fatalf("create font library: %v", err)
	}
	engine := canvas.NewGGEngine(fonts, logger)
	hub := sse.NewHub()
	sessionSvc := service.NewSessionService(designSvc, engine, hub, &config.Config{}, logger)

	sessionHandler := NewSessionHandler(sessionSvc)
	designHandler := NewDesignHandler(designSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	sessions := api.Group("/sessions")
	sessions.POST("", sessionHandler.Start)
	sessions.GET("/:id", sessionHandler.Get)
	sessions.DELETE("/:id", sessionHandler.End)
	sessions.PUT("/:id/selection", sessionHandler.Select)
	sessions.PATCH("/:id/selection", sessionHandler.UpdateSelected)
	sessions.DELETE("/:id/selection", sessionHandler.DeleteSelected)
	sessions.POST("/:id/selection/actions", sessionHandler.Action)
	sessions.POST("/:id/elements/text", sessionHandler.AddText)
	sessions.POST("/:id/elements/shape", sessionHandler.AddShape)
	sessions.POST("/:id/elements/image", sessionHandler.AddImage)
	sessions.POST("/:id/template", sessionHandler.ApplyTemplate)
	sessions.PUT("/:id/size", sessionHandler.ChangeSize)
	sessions.POST("/:id/reset", sessionHandler.Reset)
	sessions.GET("/:id/export", sessionHandler.Export)
	sessions.POST("/:id/save", sessionHandler.Save)

	designs := api.Group("/designs")
	designs.GET("", designHandler.List)
	designs.GET("/:id", designHandler.Get)
	designs.DELETE("/:id", designHandler.Delete)

	return router
}

func startSession(t *testing.T, router *gin.Engine, token string) string {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/sessions",
		map[string]interface{}{"size_id": "medium", "container_width": 900}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	return data["session_id"].(string)
}

func addShape(t *testing.T, router *gin.Engine, token, sessionID, kind string) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/sessions/"+sessionID+"/elements/shape",
		map[string]string{"kind": kind}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	return data["element"].(map[string]interface{})
}

func TestSessionStart(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/sessions",
		map[string]interface{}{"size_id": "medium", "container_width": 900}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["session_id"] == nil || data["session_id"] == "" {
		t.Error("Expected non-empty session_id")
	}
	scene := data["scene"].(map[string]interface{})
	if scene["width"].(float64) != 852 {
		t.Errorf("Expected scene width 852, got %v", scene["width"])
	}
	if scene["height"].(float64) != 262 {
		t.Errorf("Expected scene height 262, got %v", scene["height"])
	}
}

func TestSessionStartUnknownSize(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/sessions",
		map[string]interface{}{"size_id": "gigantic"}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown size, got %d", w.Code)
	}
}

func TestSessionRequiresAuth(t *testing.T) {
	router := setupSessionTest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/sessions",
		map[string]interface{}{"size_id": "medium"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}
}

func TestSessionIsolatedPerAccount(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	other := testutil.GenerateTestToken("other-user", "Other", "other@test.com")

	sessionID := startSession(t, router, token)

	// Another account cannot see the session
	w := testutil.DoRequest(router, "GET", "/api/v1/sessions/"+sessionID, nil, other)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for foreign session, got %d", w.Code)
	}
}

func TestSessionAddShapeAndSelect(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	el := addShape(t, router, token, sessionID, "circle")
	elementID := el["id"].(string)

	// New element is auto-selected
	w := testutil.DoRequest(router, "GET", "/api/v1/sessions/"+sessionID, nil, token)
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["selection"] != elementID {
		t.Errorf("Expected selection %q, got %v", elementID, data["selection"])
	}

	// Clear selection
	w = testutil.DoRequest(router, "PUT", "/api/v1/sessions/"+sessionID+"/selection",
		map[string]string{"element_id": ""}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["selection"] != "" {
		t.Errorf("Expected empty selection, got %v", data["selection"])
	}

	// Selecting a stale id fails
	w = testutil.DoRequest(router, "PUT", "/api/v1/sessions/"+sessionID+"/selection",
		map[string]string{"element_id": "no-such-element"}, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for stale element, got %d", w.Code)
	}
}

func TestSessionAddShapeUnknownKind(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	w := testutil.DoRequest(router, "POST", "/api/v1/sessions/"+sessionID+"/elements/shape",
		map[string]string{"kind": "triangle"}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown shape kind, got %d", w.Code)
	}
}

func TestSessionAddText(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	w := testutil.DoRequest(router, "POST", "/api/v1/sessions/"+sessionID+"/elements/text", nil, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	el := data["element"].(map[string]interface{})
	if el["text"] != "Your Text Here" {
		t.Errorf("Expected default text content, got %v", el["text"])
	}
	if el["fontSize"].(float64) != 32 {
		t.Errorf("Expected default font size 32, got %v", el["fontSize"])
	}
}

func TestSessionAddImage(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, image.NewRGBA(image.Rect(0, 0, 64, 48))); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "logo.png")
	io.Copy(part, bytes.NewReader(pngBuf.Bytes()))
	writer.Close()

	req, _ := http.NewRequest("POST", "/api/v1/sessions/"+sessionID+"/elements/image", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	el := data["element"].(map[string]interface{})
	if el["width"].(float64) != 64 {
		t.Errorf("Expected original width 64, got %v", el["width"])
	}
}

func TestSessionAddImageRejectsGarbage(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "notes.txt")
	io.Copy(part, bytes.NewReader([]byte("this is not a bitmap")))
	writer.Close()

	req, _ := http.NewRequest("POST", "/api/v1/sessions/"+sessionID+"/elements/image", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for undecodable upload, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSessionUpdateSelected(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	addShape(t, router, token, sessionID, "rect")

	w := testutil.DoRequest(router, "PATCH", "/api/v1/sessions/"+sessionID+"/selection",
		map[string]interface{}{"fill": "#fbbf24", "left": 10.0}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	scene := data["scene"].(map[string]interface{})
	elements := scene["elements"].([]interface{})
	el := elements[0].(map[string]interface{})
	if el["fill"] != "#fbbf24" {
		t.Errorf("Expected updated fill, got %v", el["fill"])
	}
	if el["left"].(float64) != 10 {
		t.Errorf("Expected updated left 10, got %v", el["left"])
	}
}

func TestSessionDuplicateAction(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	addShape(t, router, token, sessionID, "rect")

	w := testutil.DoRequest(router, "POST", "/api/v1/sessions/"+sessionID+"/selection/actions",
		map[string]string{"action": "duplicate"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	scene := data["scene"].(map[string]interface{})
	elements := scene["elements"].([]interface{})
	if len(elements) != 2 {
		t.Fatalf("Expected 2 elements after duplicate, got %d", len(elements))
	}
	orig := elements[0].(map[string]interface{})
	dup := elements[1].(map[string]interface{})
	if dup["left"].(float64) != orig["left"].(float64)+20 {
		t.Errorf("Expected copy offset by 20, got %v vs %v", dup["left"], orig["left"])
	}
}

func TestSessionUnknownAction(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	w := testutil.DoRequest(router, "POST", "/api/v1/sessions/"+sessionID+"/selection/actions",
		map[string]string{"action": "explode"}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown action, got %d", w.Code)
	}
}

func TestSessionApplyTemplate(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	addShape(t, router, token, sessionID, "circle")

	w := testutil.DoRequest(router, "POST", "/api/v1/sessions/"+sessionID+"/template",
		map[string]string{"template_id": "bold-text"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["selection"] != "" {
		t.Errorf("Expected selection cleared after template, got %v", data["selection"])
	}
	scene := data["scene"].(map[string]interface{})
	elements := scene["elements"].([]interface{})
	if len(elements) != 3 {
		t.Errorf("Expected 3 template elements, got %d", len(elements))
	}
}

func TestSessionApplyUnknownTemplate(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	w := testutil.DoRequest(router, "POST", "/api/v1/sessions/"+sessionID+"/template",
		map[string]string{"template_id": "vaporwave"}, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown template, got %d", w.Code)
	}
}

func TestSessionChangeSize(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	w := testutil.DoRequest(router, "PUT", "/api/v1/sessions/"+sessionID+"/size",
		map[string]interface{}{"size_id": "large", "container_width": 900}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	size := data["size"].(map[string]interface{})
	if size["id"] != "large" {
		t.Errorf("Expected size 'large', got %v", size["id"])
	}

	w = testutil.DoRequest(router, "PUT", "/api/v1/sessions/"+sessionID+"/size",
		map[string]interface{}{"size_id": "imaginary"}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown size, got %d", w.Code)
	}
}

func TestSessionResetRequiresConfirmation(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	addShape(t, router, token, sessionID, "rect")

	w := testutil.DoRequest(router, "POST", "/api/v1/sessions/"+sessionID+"/reset",
		map[string]bool{"confirm": false}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without confirmation, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/sessions/"+sessionID+"/reset",
		map[string]bool{"confirm": true}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	scene := data["scene"].(map[string]interface{})
	elements := scene["elements"].([]interface{})
	if len(elements) != 0 {
		t.Errorf("Expected empty canvas after reset, got %d elements", len(elements))
	}
}

func TestSessionExportPNG(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	w := testutil.DoRequest(router, "GET", "/api/v1/sessions/"+sessionID+"/export", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %q", ct)
	}

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("Exported body is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 852 || img.Bounds().Dy() != 262 {
		t.Errorf("Expected 852x262 export, got %v", img.Bounds())
	}
}

func TestSessionSaveAndResume(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	addShape(t, router, token, sessionID, "rect")

	// Save as a named design
	w := testutil.DoRequest(router, "POST", "/api/v1/sessions/"+sessionID+"/save",
		map[string]string{"name": "My Sign"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	design := data["design"].(map[string]interface{})
	designID := design["id"].(string)
	if design["name"] != "My Sign" {
		t.Errorf("Expected design name 'My Sign', got %v", design["name"])
	}

	// Saving again updates the same design
	w = testutil.DoRequest(router, "POST", "/api/v1/sessions/"+sessionID+"/save",
		map[string]string{"name": "My Sign v2"}, token)
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	design = data["design"].(map[string]interface{})
	if design["id"] != designID {
		t.Errorf("Expected same design id on re-save, got %v", design["id"])
	}

	// End the session, then resume from the design
	testutil.DoRequest(router, "DELETE", "/api/v1/sessions/"+sessionID, nil, token)

	w = testutil.DoRequest(router, "POST", "/api/v1/sessions",
		map[string]interface{}{"design_id": designID}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 resuming design, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["design_id"] != designID {
		t.Errorf("Expected resumed design id, got %v", data["design_id"])
	}
	scene := data["scene"].(map[string]interface{})
	elements := scene["elements"].([]interface{})
	if len(elements) != 1 {
		t.Errorf("Expected 1 restored element, got %d", len(elements))
	}
}

func TestSessionEnd(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	w := testutil.DoRequest(router, "DELETE", "/api/v1/sessions/"+sessionID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/sessions/"+sessionID, nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after end, got %d", w.Code)
	}
}

func TestDesignListAndDelete(t *testing.T) {
	router := setupSessionTest(t)
	token := testutil.DefaultTestToken()
	sessionID := startSession(t, router, token)

	w := testutil.DoRequest(router, "POST", "/api/v1/sessions/"+sessionID+"/save",
		map[string]string{"name": "Kept Design"}, token)
	resp := testutil.ParseResponse(w)
	design := resp["data"].(map[string]interface{})["design"].(map[string]interface{})
	designID := design["id"].(string)

	w = testutil.DoRequest(router, "GET", "/api/v1/designs", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 design, got %d", len(items))
	}

	// Another account sees nothing and cannot fetch it
	other := testutil.GenerateTestToken("other-user", "Other", "other@test.com")
	w = testutil.DoRequest(router, "GET", "/api/v1/designs/"+designID, nil, other)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for foreign design, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "DELETE", "/api/v1/designs/"+designID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/designs/"+designID, nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}
