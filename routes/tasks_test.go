package routes

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTaskLifecycleEndToEnd drives one job through the whole flow: a
// customer opens a request, an admin assigns it, the worker starts and
// completes it, and the customer rates the result.
func TestTaskLifecycleEndToEnd(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.registerAdmin(t, "admin@example.com")
	customerToken, _ := s.registerCustomer(t, "customer@example.com")
	workerToken, workerID := s.approvedWorker(t, adminToken, "worker@example.com")

	requestID := s.createRequest(t, customerToken, "Boiler makes a banging noise")

	w := s.do(t, http.MethodPost, "/api/v1/tasks/assign", adminToken, gin.H{
		"service_request_id": requestID,
		"field_worker_id":    workerID,
	})
	require.Equal(t, http.StatusCreated, w.Code, "Response body: %s", w.Body.String())

	task := responseData(t, w)["task"].(map[string]interface{})
	taskID := uint(task["id"].(float64))
	assert.Equal(t, "assigned", task["status"])
	assert.Equal(t, float64(requestID), task["service_request_id"])
	assert.Equal(t, float64(workerID), task["field_worker_id"])
	assert.Nil(t, task["started_at"])

	// The request mirrors the assignment.
	w = s.do(t, http.MethodGet, "/api/v1/service-requests/"+itoa(requestID), customerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	request := responseData(t, w)["service_request"].(map[string]interface{})
	assert.Equal(t, "assigned", request["status"])
	assert.Equal(t, float64(workerID), request["assigned_field_worker_id"])

	statusPath := "/api/v1/tasks/" + itoa(taskID) + "/status"

	w = s.do(t, http.MethodPut, statusPath, workerToken, gin.H{"status": "in-progress"})
	require.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())
	task = responseData(t, w)["task"].(map[string]interface{})
	assert.Equal(t, "in-progress", task["status"])
	assert.NotNil(t, task["started_at"])

	w = s.do(t, http.MethodGet, "/api/v1/service-requests/"+itoa(requestID), customerToken, nil)
	request = responseData(t, w)["service_request"].(map[string]interface{})
	assert.Equal(t, "in-progress", request["status"])

	w = s.do(t, http.MethodPut, statusPath, workerToken, gin.H{
		"status":           "completed",
		"completion_notes": "Replaced the expansion vessel and bled the radiators",
	})
	require.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())
	task = responseData(t, w)["task"].(map[string]interface{})
	assert.Equal(t, "completed", task["status"])
	assert.NotNil(t, task["completed_at"])
	assert.Equal(t, "Replaced the expansion vessel and bled the radiators", task["completion_notes"])

	// The customer now finds the task waiting for a rating.
	w = s.do(t, http.MethodGet, "/api/v1/tasks/ratable", customerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	ratable := responseData(t, w)["tasks"].([]interface{})
	require.Len(t, ratable, 1)
	entry := ratable[0].(map[string]interface{})
	assert.NotNil(t, entry["service_request"], "ratable tasks carry their request")

	w = s.do(t, http.MethodPost, "/api/v1/tasks/"+itoa(taskID)+"/rate", customerToken, gin.H{
		"rating":   5,
		"feedback": "Fast and tidy work",
	})
	require.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())
	task = responseData(t, w)["task"].(map[string]interface{})
	assert.Equal(t, float64(5), task["customer_rating"])
	assert.Equal(t, "Fast and tidy work", task["customer_feedback"])

	// The worker's public profile reflects the completed, rated job.
	w = s.do(t, http.MethodGet, "/api/v1/field-workers/"+itoa(workerID), customerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	worker := responseData(t, w)["field_worker"].(map[string]interface{})
	assert.Equal(t, float64(5), worker["rating"])
	assert.Equal(t, float64(1), worker["total_tasks_completed"])

	w = s.do(t, http.MethodGet, "/api/v1/tasks/ratable", customerToken, nil)
	assert.Len(t, responseData(t, w)["tasks"], 0, "rated tasks leave the ratable list")
}

func TestAssignAccessAndPreconditions(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.registerAdmin(t, "admin@example.com")
	customerToken, customerID := s.registerCustomer(t, "customer@example.com")
	workerToken, workerID := s.approvedWorker(t, adminToken, "worker@example.com")
	pendingID := s.registerWorker(t, "pending@example.com")

	requestID := s.createRequest(t, customerToken, "Garden gate off its hinges")
	payload := gin.H{"service_request_id": requestID, "field_worker_id": workerID}

	// Only admins assign.
	for name, token := range map[string]string{"customer": customerToken, "field worker": workerToken} {
		w := s.do(t, http.MethodPost, "/api/v1/tasks/assign", token, payload)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s must not assign", name)
		assert.Equal(t, "forbidden", decode(t, w)["error"])
	}

	// Unapproved workers cannot take assignments.
	w := s.do(t, http.MethodPost, "/api/v1/tasks/assign", adminToken, gin.H{
		"service_request_id": requestID,
		"field_worker_id":    pendingID,
	})
	assert.Equal(t, http.StatusConflict, w.Code, "Response body: %s", w.Body.String())
	assert.Equal(t, "field worker cannot take assignments", decode(t, w)["error"])

	// Neither can customers stand in for workers.
	w = s.do(t, http.MethodPost, "/api/v1/tasks/assign", adminToken, gin.H{
		"service_request_id": requestID,
		"field_worker_id":    customerID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/tasks/assign", adminToken, gin.H{
		"service_request_id": uint(9999),
		"field_worker_id":    workerID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "service request not found", decode(t, w)["error"])

	// First assignment succeeds, the second finds the request no longer open.
	s.assignTask(t, adminToken, requestID, workerID)

	w = s.do(t, http.MethodPost, "/api/v1/tasks/assign", adminToken, payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "service request is not open", decode(t, w)["error"])
}

func TestUpdateStatusGuards(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.registerAdmin(t, "admin@example.com")
	customerToken, _ := s.registerCustomer(t, "customer@example.com")
	workerToken, workerID := s.approvedWorker(t, adminToken, "worker@example.com")
	otherToken, _ := s.approvedWorker(t, adminToken, "other-worker@example.com")

	requestID := s.createRequest(t, customerToken, "Blocked gutter")
	taskID := s.assignTask(t, adminToken, requestID, workerID)
	statusPath := "/api/v1/tasks/" + itoa(taskID) + "/status"

	// Customers are kept out by the role gate.
	w := s.do(t, http.MethodPut, statusPath, customerToken, gin.H{"status": "in-progress"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode(t, w)["error"])

	// Another worker passes the role gate but not ownership.
	w = s.do(t, http.MethodPut, statusPath, otherToken, gin.H{"status": "in-progress"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not allowed", decode(t, w)["error"])

	// Skipping in-progress is not a legal move.
	w = s.do(t, http.MethodPut, statusPath, workerToken, gin.H{"status": "completed"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "status transition not allowed", decode(t, w)["error"])

	w = s.do(t, http.MethodPut, statusPath, workerToken, gin.H{"status": "fixed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid status value", decode(t, w)["error"])

	// Admins may drive the lifecycle on the worker's behalf.
	w = s.do(t, http.MethodPut, statusPath, adminToken, gin.H{"status": "in-progress"})
	assert.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

	w = s.do(t, http.MethodPut, statusPath, workerToken, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)

	// Completed is terminal.
	w = s.do(t, http.MethodPut, statusPath, workerToken, gin.H{"status": "cancelled"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "status transition not allowed", decode(t, w)["error"])
}

func TestCancelThroughTaskReleasesWorker(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.registerAdmin(t, "admin@example.com")
	customerToken, _ := s.registerCustomer(t, "customer@example.com")
	workerToken, workerID := s.approvedWorker(t, adminToken, "worker@example.com")

	requestID := s.createRequest(t, customerToken, "Peeling bathroom paint")
	taskID := s.assignTask(t, adminToken, requestID, workerID)

	w := s.do(t, http.MethodPut, "/api/v1/tasks/"+itoa(taskID)+"/status", workerToken, gin.H{
		"status": "cancelled",
	})
	require.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/service-requests/"+itoa(requestID), customerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	request := responseData(t, w)["service_request"].(map[string]interface{})
	assert.Equal(t, "cancelled", request["status"])
	assert.Nil(t, request["assigned_field_worker_id"], "cancellation releases the worker")
}

func TestRateGuards(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.registerAdmin(t, "admin@example.com")
	customerToken, _ := s.registerCustomer(t, "customer@example.com")
	otherToken, _ := s.registerCustomer(t, "other@example.com")
	workerToken, workerID := s.approvedWorker(t, adminToken, "worker@example.com")

	requestID := s.createRequest(t, customerToken, "Dripping bathroom tap")
	taskID := s.assignTask(t, adminToken, requestID, workerID)
	ratePath := "/api/v1/tasks/" + itoa(taskID) + "/rate"
	statusPath := "/api/v1/tasks/" + itoa(taskID) + "/status"

	// Not completed yet.
	s.do(t, http.MethodPut, statusPath, workerToken, gin.H{"status": "in-progress"})
	w := s.do(t, http.MethodPost, ratePath, customerToken, gin.H{"rating": 4})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "task is not completed", decode(t, w)["error"])

	s.do(t, http.MethodPut, statusPath, workerToken, gin.H{"status": "completed"})

	// Only the requesting customer rates; workers are blocked by role.
	w = s.do(t, http.MethodPost, ratePath, otherToken, gin.H{"rating": 4})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not allowed", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, ratePath, workerToken, gin.H{"rating": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode(t, w)["error"])

	// Out-of-range scores never reach the service.
	for _, rating := range []int{0, 6, -2} {
		w = s.do(t, http.MethodPost, ratePath, customerToken, gin.H{"rating": rating})
		assert.Equal(t, http.StatusBadRequest, w.Code, "rating %d must be rejected", rating)
	}

	w = s.do(t, http.MethodPost, ratePath, customerToken, gin.H{"rating": 4})
	require.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

	// One rating per task.
	w = s.do(t, http.MethodPost, ratePath, customerToken, gin.H{"rating": 5})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "task has already been rated", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/v1/tasks/9999/rate", customerToken, gin.H{"rating": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "task not found", decode(t, w)["error"])
}

func TestListTasksScoping(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.registerAdmin(t, "admin@example.com")
	customerToken, _ := s.registerCustomer(t, "customer@example.com")
	otherCustomerToken, _ := s.registerCustomer(t, "other@example.com")
	workerToken, workerID := s.approvedWorker(t, adminToken, "worker@example.com")
	_, secondWorkerID := s.approvedWorker(t, adminToken, "second-worker@example.com")

	firstRequest := s.createRequest(t, customerToken, "Wobbly ceiling fan")
	secondRequest := s.createRequest(t, otherCustomerToken, "Jammed garage door")
	s.assignTask(t, adminToken, firstRequest, workerID)
	s.assignTask(t, adminToken, secondRequest, secondWorkerID)

	w := s.do(t, http.MethodGet, "/api/v1/tasks", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, responseData(t, w)["tasks"], 2)

	w = s.do(t, http.MethodGet, "/api/v1/tasks", workerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := responseData(t, w)["tasks"].([]interface{})
	require.Len(t, tasks, 1)
	assert.Equal(t, float64(workerID), tasks[0].(map[string]interface{})["field_worker_id"])

	w = s.do(t, http.MethodGet, "/api/v1/tasks", customerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks = responseData(t, w)["tasks"].([]interface{})
	require.Len(t, tasks, 1)
	assert.Equal(t, float64(firstRequest), tasks[0].(map[string]interface{})["service_request_id"])

	w = s.do(t, http.MethodGet, "/api/v1/tasks?status=assigned", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, responseData(t, w)["tasks"], 2)

	w = s.do(t, http.MethodGet, "/api/v1/tasks?status=bogus", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTaskVisibility(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.registerAdmin(t, "admin@example.com")
	customerToken, _ := s.registerCustomer(t, "customer@example.com")
	otherToken, _ := s.registerCustomer(t, "other@example.com")
	workerToken, workerID := s.approvedWorker(t, adminToken, "worker@example.com")
	strangerToken, _ := s.approvedWorker(t, adminToken, "stranger@example.com")

	requestID := s.createRequest(t, customerToken, "Faulty doorbell")
	taskID := s.assignTask(t, adminToken, requestID, workerID)
	path := "/api/v1/tasks/" + itoa(taskID)

	for name, token := range map[string]string{"admin": adminToken, "worker": workerToken, "customer": customerToken} {
		w := s.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusOK, w.Code, "%s should see the task", name)
	}

	for name, token := range map[string]string{"other customer": otherToken, "unrelated worker": strangerToken} {
		w := s.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s should not see the task", name)
	}

	w := s.do(t, http.MethodGet, "/api/v1/tasks/9999", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadPhotoGuards(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.registerAdmin(t, "admin@example.com")
	customerToken, _ := s.registerCustomer(t, "customer@example.com")
	workerToken, workerID := s.approvedWorker(t, adminToken, "worker@example.com")

	requestID := s.createRequest(t, customerToken, "Scuffed hallway wall")
	taskID := s.assignTask(t, adminToken, requestID, workerID)
	path := "/api/v1/tasks/" + itoa(taskID) + "/photos"

	// Customers never attach photos.
	w := s.do(t, http.MethodPost, path, customerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode(t, w)["error"])

	// No photos before the work starts; rejected before any file handling.
	w = s.do(t, http.MethodPost, path, workerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "Response body: %s", w.Body.String())
	assert.Equal(t, "task has not been started", decode(t, w)["error"])
}
