package models

// UserState хранит прогресс пользователя в многошаговом сценарии.
// TempData сериализуется в JSON при хранении в Redis, поэтому срезы
// могут возвращаться как []interface{} - геттеры нормализуют типы.
type UserState struct {
	UserID      int64                  `json:"user_id"`
	CurrentStep string                 `json:"current_step"`
	TempData    map[string]interface{} `json:"temp_data"`
}

func (s *UserState) GetString(key string) string {
	if s == nil || s.TempData == nil {
		return ""
	}
	if str, ok := s.TempData[key].(string); ok {
		return str
	}
	return ""
}

func (s *UserState) GetStrings(key string) []string {
	if s == nil || s.TempData == nil {
		return nil
	}
	switch v := s.TempData[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
