package fakeapi

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"skillswap/internal/models"
)

var errUnsupportedImage = errors.New("unsupported image type")

// NewUser seeds an account directly, bypassing registration.
type NewUser struct {
	Email        string
	Password     string
	Username     string
	FirstName    string
	LastName     string
	Location     string
	Bio          string
	Availability []string
	IsPrivate    bool
	IsBanned     bool
}

type profileUpdateRequest struct {
	FirstName    string   `json:"first_name" validate:"required,min=2,max=150"`
	LastName     string   `json:"last_name" validate:"required,min=2,max=150"`
	Location     string   `json:"location" validate:"max=100"`
	Bio          string   `json:"bio" validate:"max=500"`
	Availability []string `json:"availability" validate:"dive,availability"`
	IsPrivate    bool     `json:"is_private"`
}

type addSkillRequest struct {
	SkillID int64            `json:"skill_id" validate:"required,gt=0"`
	Type    models.SkillType `json:"type" validate:"required,oneof=offer want"`
}

func (s *Server) createAccountLocked(u NewUser) *account {
	now := s.stamp()
	username := u.Username
	if username == "" {
		username, _, _ = strings.Cut(u.Email, "@")
	}
	acct := &account{
		profile: models.UserProfile{
			ID:           s.newID(),
			Username:     username,
			Email:        strings.ToLower(strings.TrimSpace(u.Email)),
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Location:     u.Location,
			Bio:          u.Bio,
			Availability: append([]string(nil), u.Availability...),
			IsActive:     true,
			IsBanned:     u.IsBanned,
			IsPrivate:    u.IsPrivate,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		passwordHash: hashPassword(u.Password),
	}
	s.accounts[acct.profile.ID] = acct
	s.byEmail[acct.profile.Email] = acct.profile.ID
	return acct
}

// GET /users/profile
func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[userIDFrom(r)]
	if !ok {
		notFound(w, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, acct.profile)
}

// PUT /users/profile, JSON or multipart with an optional profile_image.
func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var (
		req    profileUpdateRequest
		upload []byte
		ext    string
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			badRequest(w, "invalid multipart body")
			return
		}
		form := r.MultipartForm
		req = profileUpdateRequest{
			FirstName:    r.FormValue("first_name"),
			LastName:     r.FormValue("last_name"),
			Location:     r.FormValue("location"),
			Bio:          r.FormValue("bio"),
			Availability: form.Value["availability"],
		}
		req.IsPrivate, _ = strconv.ParseBool(r.FormValue("is_private"))
		if err := validateRequest(&req); err != nil {
			writeRequestError(w, err)
			return
		}

		if files := form.File["profile_image"]; len(files) > 0 {
			data, mtype, err := readImage(files[0])
			if err != nil {
				fieldError(w, "profile_image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
				return
			}
			upload, ext = data, mtype.Extension()
		}
	} else if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[userIDFrom(r)]
	if !ok {
		notFound(w, "User not found")
		return
	}

	p := &acct.profile
	p.FirstName, p.LastName = req.FirstName, req.LastName
	p.Location, p.Bio = req.Location, req.Bio
	p.Availability = append([]string(nil), req.Availability...)
	p.IsPrivate = req.IsPrivate
	if upload != nil {
		key := path.Join("profile_images", uuid.NewString()+ext)
		s.media[key] = upload
		p.ProfileImage = key
	}
	p.UpdatedAt = s.stamp()

	writeJSON(w, http.StatusOK, acct.profile)
}

func readImage(fh *multipart.FileHeader) ([]byte, *mimetype.MIME, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	mtype := mimetype.Detect(data)
	switch mtype.String() {
	case "image/jpeg", "image/png", "image/gif":
		return data, mtype, nil
	}
	return nil, nil, errUnsupportedImage
}

// GET /users?search=&skill=&availability=&page=
func (s *Server) searchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			notFound(w, "Invalid page.")
			return
		}
		page = n
	}
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))
	skill := strings.ToLower(strings.TrimSpace(q.Get("skill")))
	availability := strings.TrimSpace(q.Get("availability"))
	viewer := userIDFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []models.UserProfile
	for _, acct := range s.accounts {
		p := acct.profile
		if p.ID == viewer || p.IsPrivate || p.IsBanned || !p.IsActive {
			continue
		}
		if search != "" && !profileMatches(&p, search) {
			continue
		}
		if skill != "" && !s.offersSkillLocked(p.ID, skill) {
			continue
		}
		if availability != "" && !p.HasAvailability(availability) {
			continue
		}
		p.Email = ""
		matches = append(matches, p)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })

	start := (page - 1) * s.opts.PageSize
	if start > 0 && start >= len(matches) {
		notFound(w, "Invalid page.")
		return
	}
	end := min(start+s.opts.PageSize, len(matches))

	writeJSON(w, http.StatusOK, models.Page[models.UserProfile]{
		Count:   len(matches),
		Results: append([]models.UserProfile{}, matches[start:end]...),
	})
}

func profileMatches(p *models.UserProfile, needle string) bool {
	for _, hay := range []string{p.Username, p.FirstName, p.LastName, p.Location} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func (s *Server) offersSkillLocked(userID int64, name string) bool {
	for _, us := range s.userSkills {
		if us.UserID != userID || us.Type != models.SkillOffered {
			continue
		}
		if sk := s.skillLocked(us.SkillID); sk != nil && strings.Contains(strings.ToLower(sk.Name), name) {
			return true
		}
	}
	return false
}

// GET /users/{id}
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	viewer := userIDFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok || (id != viewer && (acct.profile.IsPrivate || acct.profile.IsBanned)) {
		notFound(w, "User not found")
		return
	}
	p := acct.profile
	if id != viewer {
		p.Email = ""
	}
	writeJSON(w, http.StatusOK, p)
}

// GET /users/{id}/skills
func (s *Server) getUserSkills(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		notFound(w, "User not found")
		return
	}

	out := []models.UserSkill{}
	for _, us := range s.userSkills {
		if us.UserID == id {
			out = append(out, s.expandUserSkillLocked(us))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

// POST /users/skills
func (s *Server) addSkill(w http.ResponseWriter, r *http.Request) {
	var req addSkillRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, err)
		return
	}
	userID := userIDFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	us, err := s.addUserSkillLocked(userID, req.SkillID, req.Type)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.expandUserSkillLocked(us))
}

func (s *Server) addUserSkillLocked(userID, skillID int64, typ models.SkillType) (*models.UserSkill, error) {
	if s.skillLocked(skillID) == nil {
		return nil, &requestError{Field: "skill_id", Message: "Invalid pk \"" + strconv.FormatInt(skillID, 10) + "\" - object does not exist."}
	}
	for _, us := range s.userSkills {
		if us.UserID == userID && us.SkillID == skillID && us.Type == typ {
			return nil, &requestError{Field: "non_field_errors", Message: "You have already added this skill."}
		}
	}

	us := &models.UserSkill{
		ID:        s.newID(),
		UserID:    userID,
		SkillID:   skillID,
		Type:      typ,
		CreatedAt: s.stamp(),
	}
	s.userSkills[us.ID] = us
	return us, nil
}

// DELETE /users/skills/{id}
func (s *Server) removeSkill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	us, ok := s.userSkills[id]
	if !ok || us.UserID != userIDFrom(r) {
		notFound(w, "Not found.")
		return
	}
	delete(s.userSkills, id)
	w.WriteHeader(http.StatusNoContent)
}

// GET /skills
func (s *Server) listSkills(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]models.Skill{}, s.skills...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) skillLocked(id int64) *models.Skill {
	for i := range s.skills {
		if s.skills[i].ID == id {
			return &s.skills[i]
		}
	}
	return nil
}

func (s *Server) expandUserSkillLocked(us *models.UserSkill) models.UserSkill {
	out := *us
	if sk := s.skillLocked(us.SkillID); sk != nil {
		cp := *sk
		out.Skill = &cp
	}
	return out
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		notFound(w, "Not found.")
		return 0, false
	}
	return id, true
}
