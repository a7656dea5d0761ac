package util

type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"error": message}
}

func Data(key string, value any) Envelope {
	return Envelope{key: value}
}

// Page wraps a listing with its paging metadata.
func Page(key string, items any, total, limit, offset int) Envelope {
	return Envelope{
		key:      items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	}
}
