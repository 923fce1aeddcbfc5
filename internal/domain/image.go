package domain

// Image описывает изображение, которое хранится в S3
type Image struct {
	ObjectKey   string
	ContentType string
	Size        int64
	Data        []byte // заполняется только при загрузке
}

func NewImage(objectKey string, contentType string, data []byte) *Image {
	return &Image{
		ObjectKey:   objectKey,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}
}
