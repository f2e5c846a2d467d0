package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	t.Run("step out of range", func(t *testing.T) {
		_, err := Plan(1000, 0)
		require.Error(t, err)

		_, err = Plan(1000, 101)
		require.Error(t, err)
	})

	t.Run("negative length", func(t *testing.T) {
		_, err := Plan(-1, 25)
		require.Error(t, err)
	})

	t.Run("empty text yields empty plan", func(t *testing.T) {
		plan, err := Plan(0, 25)
		require.NoError(t, err)
		assert.Empty(t, plan)
	})

	t.Run("step 25 over 1000 runes", func(t *testing.T) {
		plan, err := Plan(1000, 25)
		require.NoError(t, err)
		require.Len(t, plan, 4)

		assert.Equal(t, Checkpoint{Percent: 25, EndOffset: 250}, plan[0])
		assert.Equal(t, Checkpoint{Percent: 50, EndOffset: 500}, plan[1])
		assert.Equal(t, Checkpoint{Percent: 75, EndOffset: 750}, plan[2])
		assert.Equal(t, Checkpoint{Percent: 100, EndOffset: 1000}, plan[3])
	})

	t.Run("duplicate offsets collapse", func(t *testing.T) {
		// 3 字符文本在 50% 与 100% 各产生一个不同偏移
		plan, err := Plan(3, 50)
		require.NoError(t, err)
		require.Len(t, plan, 2)
		assert.Equal(t, Checkpoint{Percent: 50, EndOffset: 1}, plan[0])
		assert.Equal(t, Checkpoint{Percent: 100, EndOffset: 3}, plan[1])
	})

	t.Run("tiny text keeps only final checkpoint", func(t *testing.T) {
		// 1 字符文本：25/50/75 都落在偏移 0，只剩 100%
		plan, err := Plan(1, 25)
		require.NoError(t, err)
		require.Len(t, plan, 1)
		assert.Equal(t, Checkpoint{Percent: 100, EndOffset: 1}, plan[0])
	})

	t.Run("offsets strictly increase", func(t *testing.T) {
		for _, length := range []int{1, 7, 99, 100, 101, 12345} {
			for _, step := range []int{1, 5, 10, 25, 50, 100} {
				plan, err := Plan(length, step)
				require.NoError(t, err)

				last := 0
				for _, cp := range plan {
					assert.Greater(t, cp.EndOffset, last,
						"length=%d step=%d percent=%d", length, step, cp.Percent)
					last = cp.EndOffset
				}

				// step 整除 100 时最后一个检查点覆盖全文
				require.NotEmpty(t, plan)
				assert.Equal(t, 100, plan[len(plan)-1].Percent)
				assert.Equal(t, length, plan[len(plan)-1].EndOffset)
			}
		}
	})
}
