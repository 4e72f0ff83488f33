package book

import (
	apperrors "github.com/xiebiao/relatorio/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "Livro não encontrado")

	// ErrAuthorNotFound 作者不存在(按姓名查找时)
	ErrAuthorNotFound = apperrors.New(apperrors.ErrCodeNotFound, "Autor não encontrado")
)
