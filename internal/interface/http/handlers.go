package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/koreline/koreline-hub/internal/application/command"
	"github.com/koreline/koreline-hub/internal/domain/billing"
	"github.com/koreline/koreline-hub/internal/domain/lesson"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Koreline Hub API",
		"version":     "v1",
		"description": "REST API for the Koreline tutoring marketplace",
		"endpoints": map[string]string{
			"health":   "/health",
			"lessons":  "/api/lessons",
			"subjects": "/api/subjects",
			"register": "/api/auth/register",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		if err := s.deps.HealthChecker.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"reason": err.Error(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"uptime": s.Uptime().String(),
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		if err := s.deps.HealthChecker.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT & PROFILE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRegister handles POST /api/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RegisterHandler.Handle(r.Context(), command.RegisterAccountCommand{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"profile_id": result.ProfileID,
		"username":   result.Username,
		"token":      result.Token,
	})
}

// handleLogin handles POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.LoginHandler.Handle(r.Context(), command.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"profile_id": result.ProfileID,
		"username":   result.Username,
		"token":      result.Token,
	})
}

// handleLogout handles POST /api/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r)
	if err := s.deps.Tokens.Delete(r.Context(), token); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// handleGetMe handles GET /api/me
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ownProfileView(currentProfile(r.Context())))
}

// handleUpdateMe handles PATCH /api/me
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName *string    `json:"first_name"`
		LastName  *string    `json:"last_name"`
		BirthDate *time.Time `json:"birth_date"`
		Headline  *string    `json:"headline"`
		Biography *string    `json:"biography"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	p, err := s.deps.UpdateProfileHandler.Handle(r.Context(), command.UpdateProfileCommand{
		ActorID:   currentProfile(r.Context()).ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: req.BirthDate,
		Headline:  req.Headline,
		Biography: req.Biography,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ownProfileView(p))
}

// handleGetProfile handles GET /api/profiles/{username}
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Profiles.GetByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, publicProfileView(p))
}

// ══════════════════════════════════════════════════════════════════════════════
// LESSON CATALOGUE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListLessons handles GET /api/lessons
func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	filter := lesson.Filter{
		TeacherUsername: getQueryParam(r, "teacher", ""),
	}

	ls, err := s.deps.Lessons.List(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLessonViews(ls))
}

// handleGetLesson handles GET /api/lessons/{slug}
func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	l, err := s.deps.Lessons.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLessonView(l))
}

// handleCreateLesson handles POST /api/lessons
func (s *Server) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title            string `json:"title"`
		Subject          string `json:"subject"`
		Stage            string `json:"stage"`
		ShortDescription string `json:"short_description"`
		LongDescription  string `json:"long_description"`
		Price            int    `json:"price"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.CreateLessonHandler.Handle(r.Context(), command.CreateLessonCommand{
		TeacherID:        currentProfile(r.Context()).ID,
		Title:            req.Title,
		SubjectName:      req.Subject,
		StageName:        req.Stage,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Price:            req.Price,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"lesson":         newLessonView(result.Lesson),
		"became_teacher": result.BecameTeacher,
	})
}

// handleUpdateLesson handles PATCH /api/lessons/{slug}
func (s *Server) handleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title            *string `json:"title"`
		Subject          *string `json:"subject"`
		Stage            *string `json:"stage"`
		ShortDescription *string `json:"short_description"`
		LongDescription  *string `json:"long_description"`
		Price            *int    `json:"price"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	l, err := s.deps.UpdateLessonHandler.Handle(r.Context(), command.UpdateLessonCommand{
		ActorID:          currentProfile(r.Context()).ID,
		Slug:             r.PathValue("slug"),
		Title:            req.Title,
		SubjectName:      req.Subject,
		StageName:        req.Stage,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Price:            req.Price,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newLessonView(l))
}

// handleDeleteLesson handles DELETE /api/lessons/{slug}
func (s *Server) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	err := s.deps.DeleteLessonHandler.Handle(r.Context(), command.DeleteLessonCommand{
		ActorID: currentProfile(r.Context()).ID,
		Slug:    r.PathValue("slug"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleListSubjects handles GET /api/subjects
func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.deps.Lessons.ListSubjects(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	names := make([]string, 0, len(subjects))
	for _, sub := range subjects {
		names = append(names, sub.Name)
	}
	writeJSON(w, http.StatusOK, names)
}

// handleListStages handles GET /api/stages
func (s *Server) handleListStages(w http.ResponseWriter, r *http.Request) {
	stages, err := s.deps.Lessons.ListStages(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	names := make([]string, 0, len(stages))
	for _, st := range stages {
		names = append(names, st.Name)
	}
	writeJSON(w, http.StatusOK, names)
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBSCRIPTION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleJoinLesson handles POST /api/lessons/{slug}/join
func (s *Server) handleJoinLesson(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.JoinLessonHandler.Handle(r.Context(), command.JoinLessonCommand{
		StudentID:  currentProfile(r.Context()).ID,
		LessonSlug: r.PathValue("slug"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"membership_id": result.MembershipID,
		"created_at":    result.CreatedAt,
	})
}

// handleLeaveLesson handles DELETE /api/lessons/{slug}/join
func (s *Server) handleLeaveLesson(w http.ResponseWriter, r *http.Request) {
	err := s.deps.LeaveLessonHandler.Handle(r.Context(), command.LeaveLessonCommand{
		StudentID:  currentProfile(r.Context()).ID,
		LessonSlug: r.PathValue("slug"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListLessonStudents handles GET /api/lessons/{slug}/students
func (s *Server) handleListLessonStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.deps.LessonStudentsHandler.Handle(r.Context(),
		currentProfile(r.Context()).ID, r.PathValue("slug"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	views := make([]profileView, 0, len(students))
	for _, p := range students {
		views = append(views, publicProfileView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleUnsubscribeStudent handles DELETE /api/lessons/{slug}/students/{username}
func (s *Server) handleUnsubscribeStudent(w http.ResponseWriter, r *http.Request) {
	err := s.deps.UnsubscribeHandler.Handle(r.Context(), command.UnsubscribeStudentCommand{
		ActorID:         currentProfile(r.Context()).ID,
		LessonSlug:      r.PathValue("slug"),
		StudentUsername: r.PathValue("username"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListSubscriptions handles GET /api/me/subscriptions
func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ls, err := s.deps.SubscriptionsHandler.Handle(r.Context(), currentProfile(r.Context()).ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLessonViews(ls))
}

// ══════════════════════════════════════════════════════════════════════════════
// ROOM HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleOpenRoom handles POST /api/lessons/{slug}/rooms
func (s *Server) handleOpenRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentUsername string `json:"student_username"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.OpenRoomHandler.Handle(r.Context(), command.OpenRoomCommand{
		ActorID:         currentProfile(r.Context()).ID,
		LessonSlug:      r.PathValue("slug"),
		StudentUsername: req.StudentUsername,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	// Reopening hands back the same room, so both paths answer 200.
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":          result.Room.Key,
		"already_open": result.AlreadyOpen,
		"created_at":   result.Room.CreatedAt,
	})
}

// handleRoomForLesson handles GET /api/lessons/{slug}/room
//
// The optional student query parameter is how the lesson's teacher picks
// which pair's room they mean; student viewers leave it empty.
func (s *Server) handleRoomForLesson(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.RoomForLessonHandler.Handle(r.Context(),
		currentProfile(r.Context()).ID, r.PathValue("slug"), r.URL.Query().Get("student"))
	if err != nil {
		// No open room for this pair is an empty answer, not a failure.
		if errors.Is(err, shared.ErrRoomNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRoomView(view))
}

// handleRoomByKey handles GET /api/rooms/{key}
func (s *Server) handleRoomByKey(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.RoomByKeyHandler.Handle(r.Context(),
		currentProfile(r.Context()).ID, r.PathValue("key"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRoomView(view))
}

// handleCloseRooms handles POST /api/rooms/close
func (s *Server) handleCloseRooms(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentUsername string `json:"student_username"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.CloseRoomsHandler.Handle(r.Context(), command.CloseRoomsCommand{
		ActorID:         currentProfile(r.Context()).ID,
		StudentUsername: req.StudentUsername,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	// A non-teacher caller is a silent no-op, not a permission error.
	if result.Skipped {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"closed": result.Closed})
}

// ══════════════════════════════════════════════════════════════════════════════
// BILLING & TOKEN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListBills handles GET /api/me/bills
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bs, err := s.deps.FeedsHandler.Bills(r.Context(), currentProfile(r.Context()).ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBillViews(bs))
}

// handleIssueBill handles POST /api/lessons/{slug}/bills
func (s *Server) handleIssueBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentUsername string `json:"student_username"`
		Amount          int    `json:"amount"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	b, err := s.deps.IssueBillHandler.Handle(r.Context(), command.IssueBillCommand{
		ActorID:         currentProfile(r.Context()).ID,
		LessonSlug:      r.PathValue("slug"),
		StudentUsername: req.StudentUsername,
		Amount:          req.Amount,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newBillView(b))
}

// handlePayBill handles POST /api/bills/{id}/pay
func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.PayBillHandler.Handle(r.Context(), command.PayBillCommand{
		ActorID: currentProfile(r.Context()).ID,
		BillID:  r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBillView(b))
}

// handleDeleteBill handles DELETE /api/bills/{id}
func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	err := s.deps.DeleteBillHandler.Handle(r.Context(), command.DeleteBillCommand{
		ActorID: currentProfile(r.Context()).ID,
		BillID:  r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleListOperations handles GET /api/me/operations
func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	ops, err := s.deps.FeedsHandler.Operations(r.Context(), currentProfile(r.Context()).ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOperationViews(ops))
}

// handleTradeTokens handles POST /api/tokens/trade
func (s *Server) handleTradeTokens(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type   string `json:"type"`
		Amount int    `json:"amount"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	opType := billing.OperationType(req.Type)
	if opType != billing.OperationBuy && opType != billing.OperationSell {
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_error", "type must be BUY or SELL")
		return
	}

	result, err := s.deps.TradeTokensHandler.Handle(r.Context(), command.TradeTokensCommand{
		ActorID: currentProfile(r.Context()).ID,
		Type:    opType,
		Amount:  req.Amount,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"balance": result.Balance})
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListComments handles GET /api/teachers/{username}/comments
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	cs, err := s.deps.ListCommentsHandler.Handle(r.Context(), r.PathValue("username"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCommentViews(cs))
}

// handleCreateComment handles POST /api/teachers/{username}/comments
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
		Rate int    `json:"rate"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	c, err := s.deps.CreateCommentHandler.Handle(r.Context(), command.CreateCommentCommand{
		AuthorID:        currentProfile(r.Context()).ID,
		TeacherUsername: r.PathValue("username"),
		Text:            req.Text,
		Rate:            req.Rate,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         c.ID,
		"text":       c.Text,
		"rate":       c.Rate,
		"created_at": c.CreatedAt,
	})
}

// handleReportComment handles POST /api/comments/{id}/report
func (s *Server) handleReportComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	rep, err := s.deps.ReportCommentHandler.Handle(r.Context(), command.ReportCommentCommand{
		AuthorID:  currentProfile(r.Context()).ID,
		CommentID: r.PathValue("id"),
		Text:      req.Text,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": rep.ID})
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION & MESSAGE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListNotifications handles GET /api/me/notifications
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	ns, err := s.deps.FeedsHandler.Notifications(r.Context(), currentProfile(r.Context()).ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newNotificationViews(ns))
}

// handleMarkNotificationRead handles POST /api/notifications/{id}/read
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := s.deps.MarkNotifReadHandler.Handle(r.Context(), command.MarkNotificationReadCommand{
		ActorID:        currentProfile(r.Context()).ID,
		NotificationID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// handleListMessages handles GET /api/me/messages
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	ms, err := s.deps.FeedsHandler.Inbox(r.Context(), currentProfile(r.Context()).ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMessageViews(ms))
}

// handleSendMessage handles POST /api/messages
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReceiverUsername string `json:"receiver_username"`
		Title            string `json:"title"`
		Text             string `json:"text"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	m, err := s.deps.SendMessageHandler.Handle(r.Context(), command.SendMessageCommand{
		SenderID:         currentProfile(r.Context()).ID,
		ReceiverUsername: req.ReceiverUsername,
		Title:            req.Title,
		Text:             req.Text,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMessageView(m))
}

// handleMarkMessageRead handles POST /api/messages/{id}/read
func (s *Server) handleMarkMessageRead(w http.ResponseWriter, r *http.Request) {
	err := s.deps.MarkMessageReadHandler.Handle(r.Context(), command.MarkMessageReadCommand{
		ActorID:   currentProfile(r.Context()).ID,
		MessageID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
