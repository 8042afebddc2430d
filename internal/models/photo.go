package models

// PhotoUpload - загруженный пользователем файл фотографии
type PhotoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// StoredPhoto - фотография, сохраненная в хранилище
type StoredPhoto struct {
	Key         string
	URL         string
	ContentType string
	Size        int
}
