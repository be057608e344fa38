package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

func exportRequest(t *testing.T, segments string, withVideo bool) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if withVideo {
		part, _ := mw.CreateFormFile("video", "clip.mp4")
		part.Write([]byte("fake video content"))
	}
	if segments != "" {
		mw.WriteField("segments", segments)
	}
	mw.WriteField("title", "Highlights")
	mw.WriteField("backgroundColor", "#123456")
	mw.WriteField("textColor", "#FFFFFF")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/export", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestExport_OneShot(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, exportRequest(t, `[{"start":0,"end":10},{"start":30,"end":45}]`, true))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp ExportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.JobID == "" {
		t.Error("jobId is empty")
	}
	if len(resp.VideoURLs) != 2 {
		t.Fatalf("videoUrls = %d entries, want 2", len(resp.VideoURLs))
	}

	wantFirst := "/artifacts/" + resp.JobID + "/segment-1.mp4"
	if resp.VideoURLs[0] != wantFirst {
		t.Errorf("videoUrls[0] = %q, want %q", resp.VideoURLs[0], wantFirst)
	}

	// The URLs the response hands out must be servable by the same router.
	artifactRR := httptest.NewRecorder()
	router.ServeHTTP(artifactRR, httptest.NewRequest(http.MethodGet, resp.VideoURLs[0], nil))
	if artifactRR.Code != http.StatusOK {
		t.Errorf("artifact status = %d, want %d", artifactRR.Code, http.StatusOK)
	}
	if got := artifactRR.Body.String(); got != "rendered segment-1.mp4" {
		t.Errorf("artifact body = %q", got)
	}
}

func TestExport_WireFieldNames(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, exportRequest(t, `[{"start":0,"end":5}]`, true))

	var raw map[string]interface{}
	json.Unmarshal(rr.Body.Bytes(), &raw)
	if _, ok := raw["videoUrls"]; !ok {
		t.Error("response missing videoUrls key")
	}
}

func TestExport_MissingVideo(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, exportRequest(t, `[{"start":0,"end":10}]`, false))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var resp ErrorResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Code != "MISSING_INPUT" {
		t.Errorf("code = %q, want MISSING_INPUT", resp.Code)
	}
}

func TestExport_NoSegments(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, exportRequest(t, "", true))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestExport_RenderFailure(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{failAt: 2})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, exportRequest(t, `[{"start":0,"end":10},{"start":20,"end":30}]`, true))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}

	var resp ErrorResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Code != "RENDER_FAILED" {
		t.Errorf("code = %q, want RENDER_FAILED", resp.Code)
	}

	// The failed run shows up in the job history.
	jobsRR := httptest.NewRecorder()
	router.ServeHTTP(jobsRR, httptest.NewRequest(http.MethodGet, "/jobs", nil))

	var jobs JobsResponse
	json.Unmarshal(jobsRR.Body.Bytes(), &jobs)
	if len(jobs.Jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs.Jobs))
	}
	if jobs.Jobs[0].Status != "failed" {
		t.Errorf("job status = %q, want failed", jobs.Jobs[0].Status)
	}
}

func TestExportSession(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{})
	sess := createTestSession(t, router)

	postJSON(t, router, http.MethodPost, "/sessions/"+sess.ID+"/segments",
		AddSegmentRequest{Start: "0:05", End: "0:20"})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sessions/"+sess.ID+"/export", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp ExportResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if len(resp.VideoURLs) != 1 {
		t.Fatalf("videoUrls = %d entries, want 1", len(resp.VideoURLs))
	}

	// The job is attributed to the session.
	jobRR := httptest.NewRecorder()
	router.ServeHTTP(jobRR, httptest.NewRequest(http.MethodGet, "/jobs/"+resp.JobID, nil))
	var job JobResponse
	json.Unmarshal(jobRR.Body.Bytes(), &job)
	if job.SessionID != sess.ID {
		t.Errorf("job session_id = %q, want %q", job.SessionID, sess.ID)
	}
	if job.Status != "completed" {
		t.Errorf("job status = %q, want completed", job.Status)
	}
}

func TestExportSession_NoSegments(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{})
	sess := createTestSession(t, router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sessions/"+sess.ID+"/export", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var resp ErrorResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Code != "MISSING_INPUT" {
		t.Errorf("code = %q, want MISSING_INPUT", resp.Code)
	}
}
