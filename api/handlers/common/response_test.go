package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIResponse(t *testing.T) {
	t.Run("成功响应", func(t *testing.T) {
		resp := APIResponse{
			Success: true,
			Message: "Operation successful",
			Data: map[string]string{
				"key": "value",
			},
		}

		assert.True(t, resp.Success)
		assert.Equal(t, "Operation successful", resp.Message)
		assert.NotNil(t, resp.Data)
	})

	t.Run("错误响应携带错误码", func(t *testing.T) {
		resp := ErrorResponse{
			Success: false,
			Code:    "AccessDenied",
			Message: "Operation failed",
		}

		assert.False(t, resp.Success)
		assert.Equal(t, "AccessDenied", resp.Code)
	})
}

func TestListResponse(t *testing.T) {
	resp := ListResponse{
		Items: []interface{}{
			map[string]string{"id": "1"},
			map[string]string{"id": "2"},
		},
		Total: 2,
	}

	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.Total)
}
