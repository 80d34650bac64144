package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"chunkserve/pkg/cache"
	"chunkserve/pkg/codec"
	"chunkserve/pkg/registry"
	"chunkserve/pkg/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fileSummary struct {
	FileID       string `json:"file_id"`
	Filename     string `json:"filename"`
	TotalChunks  int64  `json:"total_chunks"`
	OriginalSize int64  `json:"original_size"`
	EncodedSize  int64  `json:"encoded_size"`
}

type chunkResponse struct {
	ChunkNumber  int64  `json:"chunk_number"`
	TotalChunks  int64  `json:"total_chunks"`
	Data         string `json:"data"`
	DataEncoding string `json:"data_encoding,omitempty"`
	IsLast       bool   `json:"is_last"`
	ChunkSize    int64  `json:"chunk_size_used"`
	ActualSize   int64  `json:"actual_chunk_size"`
}

type infoResponse struct {
	FileID       string `json:"file_id"`
	Filename     string `json:"filename"`
	TotalChunks  int64  `json:"total_chunks"`
	OriginalSize int64  `json:"original_size"`
	EncodedSize  int64  `json:"encoded_size"`
	ChunkSize    int64  `json:"chunk_size_used"`
	Codec        string `json:"codec"`
	Mode         string `json:"mode"`
	IsReady      bool   `json:"is_ready"`
}

// chunkParams validates the query triple shared by the chunk and info
// endpoints: chunk size bounds, codec name, mode name.
func (s *Server) chunkParams(c *gin.Context) (int64, codec.Codec, cache.Mode, error) {
	chunkSize := s.cfg.DefaultChunkSize
	if raw := c.Query("chunk_size"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", cache.ErrInvalidChunkSize, raw)
		}
		chunkSize = parsed
	}
	if chunkSize < cache.MinChunkSize || chunkSize > cache.MaxChunkSize {
		return 0, 0, 0, fmt.Errorf("%w: %d not in [%d, %d]",
			cache.ErrInvalidChunkSize, chunkSize, cache.MinChunkSize, cache.MaxChunkSize)
	}

	cdc := codec.Base64
	if raw := c.Query("codec"); raw != "" {
		parsed, err := codec.Parse(raw)
		if err != nil {
			return 0, 0, 0, err
		}
		cdc = parsed
	}

	mode, err := cache.ParseMode(c.Query("mode"))
	if err != nil {
		return 0, 0, 0, err
	}

	return chunkSize, cdc, mode, nil
}

func (s *Server) listFiles(c *gin.Context) {
	if _, err := s.registry.ScanFolder(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}

	records := s.registry.List()
	files := make([]fileSummary, 0, len(records))
	for _, record := range records {
		files = append(files, fileSummary{
			FileID:       string(record.ID),
			Filename:     record.Name,
			TotalChunks:  record.DefaultChunks,
			OriginalSize: record.Size,
			EncodedSize:  record.EncodedSize,
		})
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (s *Server) getChunk(c *gin.Context) {
	chunkSize, cdc, mode, err := s.chunkParams(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	index, err := strconv.ParseInt(c.Param("chunk_number"), 10, 64)
	if err != nil {
		s.writeError(c, fmt.Errorf("%w: invalid chunk number %q", cache.ErrChunkNotFound, c.Param("chunk_number")))
		return
	}

	chunk, err := s.store.GetChunk(types.FileID(c.Param("file_id")), index, chunkSize, cdc, mode)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := chunkResponse{
		ChunkNumber: chunk.Index,
		TotalChunks: chunk.TotalChunks,
		Data:        string(chunk.Data),
		IsLast:      chunk.IsLast,
		ChunkSize:   chunkSize,
		ActualSize:  chunk.ActualSize,
	}
	// yEnc chunks are 8-bit binary; wrap them for the JSON transport.
	if cdc.Binary() {
		resp.Data = base64.StdEncoding.EncodeToString(chunk.Data)
		resp.DataEncoding = "base64"
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) getFileInfo(c *gin.Context) {
	chunkSize, cdc, mode, err := s.chunkParams(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	fileID := types.FileID(c.Param("file_id"))
	record, err := s.registry.Resolve(fileID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	info, err := s.store.GetInfo(fileID, chunkSize, cdc, mode)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, infoResponse{
		FileID:       string(record.ID),
		Filename:     record.Name,
		TotalChunks:  info.TotalChunks,
		OriginalSize: info.OriginalLength,
		EncodedSize:  info.EncodedLength,
		ChunkSize:    chunkSize,
		Codec:        cdc.String(),
		Mode:         mode.String(),
		IsReady:      info.IsReady,
	})
}

func (s *Server) deleteFile(c *gin.Context) {
	fileID := types.FileID(c.Param("file_id"))

	record, err := s.registry.Delete(fileID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if err := s.store.Purge(record.ID); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

func (s *Server) uploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart file field"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.writeError(c, err)
		return
	}

	record, err := s.registry.RegisterBytes(fileHeader.Filename, data)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, fileSummary{
		FileID:       string(record.ID),
		Filename:     record.Name,
		TotalChunks:  record.DefaultChunks,
		OriginalSize: record.Size,
		EncodedSize:  record.EncodedSize,
	})
}

func (s *Server) health(c *gin.Context) {
	if _, err := s.registry.ScanFolder(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"files_processed": s.registry.Count(),
	})
}

// writeError maps the error taxonomy onto HTTP status codes: not-found
// conditions to 404, invalid arguments to 400, everything else (including
// materialization failures) to 500.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, registry.ErrNotFound),
		errors.Is(err, cache.ErrChunkNotFound),
		errors.Is(err, cache.ErrSegmentMissing):
		status = http.StatusNotFound
	case errors.Is(err, cache.ErrInvalidChunkSize),
		errors.Is(err, cache.ErrUnknownMode),
		errors.Is(err, codec.ErrUnknown):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
