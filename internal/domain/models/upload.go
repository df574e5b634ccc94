package models

// PresignedUpload - куда класть файл модели
type PresignedUpload struct {
	URL    string `json:"url"`
	Key    string `json:"key"`
	Bucket string `json:"bucket"`
}

type UploadRecord struct {
	ID     int64  `json:"id"`
	Key    string `json:"key"`
	Bucket string `json:"bucket"`
	Status string `json:"status"`
}

type ModelRecord struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// UploadResult - ответ /v1/files/complete
type UploadResult struct {
	Upload UploadRecord `json:"upload"`
	Model  ModelRecord  `json:"model"`
}
