package users

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"
)

var allowedMediaExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
	".heif": true,
	".webp": true,
	".mp4":  true,
	".pdf":  true,
}

// POST /api/media
// Accepts one multipart file and stores it in object storage. The returned
// key goes into the media_refs of a subsequent task-update submission.
func UploadMediaHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	if err := r.ParseMultipartForm(25 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid form data"})
		return
	}
	file, handler, err := r.FormFile("file")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "A file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	if !allowedMediaExts[ext] {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "File must be JPG/PNG/HEIC/HEIF/WEBP/MP4/PDF"})
		return
	}
	if handler.Size > 25<<20 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "File must be at most 25MB"})
		return
	}

	// Sniff the content type; the extension alone is not trusted.
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Could not read file"})
		return
	}
	detected := http.DetectContentType(buf[:n])
	if strings.HasPrefix(detected, "text/html") || strings.Contains(detected, "javascript") {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unsupported file content"})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Could not read file"})
		return
	}

	key := utils.NewMediaObjectKey(uid, handler.Filename)
	url, err := utils.UploadMedia(r.Context(), key, file, handler.Size)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Upload failed, please try again"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Uploaded",
		Data: map[string]interface{}{
			"key": key,
			"url": url,
		},
	})
}
