package dto

import (
	"time"

	"github.com/google/uuid"

	foldersDomain "github.com/keywarden/keywarden/internal/folders/domain"
)

// FolderResponse is the folder representation returned by the API.
type FolderResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// MapFolderToResponse converts a domain Folder to its API representation.
func MapFolderToResponse(folder *foldersDomain.Folder) *FolderResponse {
	return &FolderResponse{
		ID:        folder.ID,
		Name:      folder.Name,
		ParentID:  folder.ParentID,
		CreatedAt: folder.CreatedAt,
		UpdatedAt: folder.UpdatedAt,
	}
}

// ListFoldersResponse wraps a page of folders.
type ListFoldersResponse struct {
	Folders []*FolderResponse `json:"folders"`
	Offset  int               `json:"offset"`
	Limit   int               `json:"limit"`
}

// MapFoldersToListResponse converts domain Folders to a paginated list.
func MapFoldersToListResponse(folders []*foldersDomain.Folder, offset, limit int) *ListFoldersResponse {
	responses := make([]*FolderResponse, 0, len(folders))
	for _, folder := range folders {
		responses = append(responses, MapFolderToResponse(folder))
	}
	return &ListFoldersResponse{
		Folders: responses,
		Offset:  offset,
		Limit:   limit,
	}
}
