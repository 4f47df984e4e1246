package http

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/lib/apperror"
	"premium_gallery/internal/lib/logger/sl"
	"premium_gallery/internal/middleware"
	authsvc "premium_gallery/internal/services/auth"
	gallery "premium_gallery/internal/services/gallery_service"
	"premium_gallery/internal/transport/http/dto/request"
	"premium_gallery/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	_ "premium_gallery/docs"
)

type AuthService interface {
	Register(ctx context.Context, in authsvc.RegisterInput) (uuid.UUID, error)
	Login(ctx context.Context, identifier, password string) (authsvc.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, auth *models.AuthContext) (models.User, error)
}

type GalleryService interface {
	Upload(ctx context.Context, auth *models.AuthContext, file *multipart.FileHeader, in gallery.UploadInput) (models.GalleryItem, error)
	List(ctx context.Context, typ models.GalleryType, premium *bool) []models.GalleryItem
	SetPremium(ctx context.Context, auth *models.AuthContext, id int64, value bool) (models.GalleryItem, error)
	ClearAllPremium(ctx context.Context) (int64, error)
	Delete(ctx context.Context, auth *models.AuthContext, id int64) (models.GalleryItem, error)
}

type MediaService interface {
	UploadContent(ctx context.Context, auth *models.AuthContext, file *multipart.FileHeader, isPublic bool) (*models.Media, error)
	ListMine(ctx context.Context, auth *models.AuthContext) ([]models.Media, error)
	Get(ctx context.Context, auth *models.AuthContext, id uuid.UUID) (*models.Media, error)
}

type CreatorService interface {
	List(ctx context.Context, status string) ([]models.CreatorProfile, error)
	Approve(ctx context.Context, userID uuid.UUID) (models.CreatorProfile, error)
	Reject(ctx context.Context, userID uuid.UUID) (models.CreatorProfile, error)
	Profile(ctx context.Context, userID uuid.UUID) (models.CreatorProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, displayName, bio string, categories []string) (models.CreatorProfile, error)
	UploadPhoto(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (models.CreatorProfile, error)
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, auth *models.AuthContext, creatorID uuid.UUID) (models.Subscription, error)
	Cancel(ctx context.Context, auth *models.AuthContext, creatorID uuid.UUID) (models.Subscription, error)
	List(ctx context.Context, auth *models.AuthContext) ([]models.Subscription, error)
	Purchase(ctx context.Context, auth *models.AuthContext, itemID int64) (models.Purchase, error)
	CheckAccess(ctx context.Context, auth *models.AuthContext, itemID int64) (bool, error)
}

type Routers struct {
	log                 *slog.Logger
	AuthService         AuthService
	GalleryService      GalleryService
	MediaService        MediaService
	CreatorService      CreatorService
	SubscriptionService SubscriptionService
}

func NewRouter(
	log *slog.Logger,
	authService AuthService,
	galleryService GalleryService,
	mediaService MediaService,
	creatorService CreatorService,
	subscriptionService SubscriptionService,
) *Routers {
	return &Routers{
		log:                 log,
		AuthService:         authService,
		GalleryService:      galleryService,
		MediaService:        mediaService,
		CreatorService:      creatorService,
		SubscriptionService: subscriptionService,
	}
}

// Register godoc
// @Summary Регистрация нового пользователя
// @Description Создает аккаунт автора (status pending) или подписчика.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RegisterRequest true "Данные для регистрации"
// @Success 201 {object} response.RegisterResponse
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 409 {object} response.ErrorResponse "Пользователь уже существует"
// @Router /api/auth/register [post]
func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	var req request.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(err)
	}
	if err := c.Validate(req); err != nil {
		return invalidRequest(err)
	}

	userID, err := r.AuthService.Register(c.Request().Context(), authsvc.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Role:        models.Role(req.Role),
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return err
	}

	r.log.Info("user registered successfully",
		slog.String("op", op),
		slog.String("user_id", userID.String()),
	)

	return c.JSON(http.StatusCreated, response.RegisterResponse{
		Message: "Registration successful",
		UserID:  userID,
	})
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Вход по email или username. Ставит cookie сессии и возвращает bearer JWT.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Данные для входа"
// @Success 200 {object} response.LoginResponse
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 401 {object} response.ErrorResponse "Ошибка аутентификации"
// @Router /api/auth/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	var req request.LoginRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(err)
	}
	if err := c.Validate(req); err != nil {
		return invalidRequest(err)
	}

	res, err := r.AuthService.Login(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		return err
	}

	if err := middleware.SaveSessionToken(c, res.Tokens.Token, time.Until(res.Tokens.ExpiresAt)); err != nil {
		r.log.Error("failed to save session cookie", slog.String("op", op), sl.Err(err))
		return err
	}

	return c.JSON(http.StatusOK, response.LoginResponse{
		Message:   "Login successful",
		User:      res.User,
		Token:     res.Tokens.Bearer,
		ExpiresAt: res.Tokens.ExpiresAt,
		Redirect:  res.Redirect,
	})
}

// Logout godoc
// @Summary Выход
// @Tags auth
// @Produce json
// @Success 200 {object} response.MessageResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/auth/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	auth := middleware.AuthFrom(c)

	if err := r.AuthService.Logout(c.Request().Context(), auth.Token); err != nil {
		return err
	}
	if err := middleware.ClearSession(c); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response.MessageResponse{Message: "Logged out"})
}

// Me godoc
// @Summary Текущий пользователь
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} response.ErrorResponse
// @Router /api/auth/me [get]
func (r *Routers) Me(c echo.Context) error {
	user, err := r.AuthService.Me(c.Request().Context(), middleware.AuthFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// ListGallery godoc
// @Summary Список элементов галереи
// @Description Возвращает gallery или featured, опционально отфильтрованные по isPremium. Ошибки хранилища дают пустой массив.
// @Tags gallery
// @Produce json
// @Param type query string false "gallery | featured" Enums(gallery, featured)
// @Param premium query boolean false "Фильтр по isPremium"
// @Success 200 {array} models.GalleryItem
// @Failure 400 {object} response.ErrorResponse "Недопустимый type"
// @Router /api/gallery [get]
func (r *Routers) ListGallery(c echo.Context) error {
	typ, err := gallery.ParseType(c.QueryParam("type"))
	if err != nil {
		return err
	}

	return r.list(c, typ)
}

// ListFeatured godoc
// @Summary Список featured
// @Tags gallery
// @Produce json
// @Param premium query boolean false "Фильтр по isPremium"
// @Success 200 {array} models.GalleryItem
// @Router /api/featured [get]
func (r *Routers) ListFeatured(c echo.Context) error {
	return r.list(c, models.GalleryTypeFeatured)
}

func (r *Routers) list(c echo.Context, typ models.GalleryType) error {
	items := r.GalleryService.List(c.Request().Context(), typ, gallery.ParsePremium(c.QueryParam("premium")))

	return c.JSON(http.StatusOK, items)
}

// UploadGallery godoc
// @Summary Загрузка изображения в галерею
// @Description Проверяет, ужимает и сохраняет изображение, затем создает запись.
// @Tags gallery
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Изображение (jpeg, png, webp)"
// @Param title formData string false "Заголовок"
// @Param description formData string false "Описание"
// @Param tags formData string false "JSON-массив тегов"
// @Param contentRating formData string false "sfw | nsfw"
// @Param isPremium formData boolean false "Премиум"
// @Param instagram formData string false "Instagram"
// @Param twitter formData string false "Twitter"
// @Param tiktok formData string false "TikTok"
// @Param onlyfans formData string false "OnlyFans"
// @Success 201 {object} models.GalleryItem
// @Failure 400 {object} response.ErrorResponse "Нет файла, битое изображение или мелкие размеры"
// @Failure 401 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse "Файл слишком большой"
// @Failure 415 {object} response.ErrorResponse "Неподдерживаемый формат"
// @Failure 500 {object} response.ErrorResponse
// @Router /api/gallery [post]
// @Router /api/featured [post]
func (r *Routers) UploadGallery(typ models.GalleryType) echo.HandlerFunc {
	return func(c echo.Context) error {
		file, err := formFile(c, "image")
		if err != nil {
			return err
		}

		item, err := r.GalleryService.Upload(c.Request().Context(), middleware.AuthFrom(c), file, gallery.UploadInput{
			Type:          typ,
			Title:         c.FormValue("title"),
			Description:   c.FormValue("description"),
			Tags:          c.FormValue("tags"),
			ContentRating: c.FormValue("contentRating"),
			IsPremium:     c.FormValue("isPremium"),
			Instagram:     c.FormValue("instagram"),
			Twitter:       c.FormValue("twitter"),
			TikTok:        c.FormValue("tiktok"),
			OnlyFans:      c.FormValue("onlyfans"),
		})
		if err != nil {
			return err
		}

		return c.JSON(http.StatusCreated, item)
	}
}

// SetPremium godoc
// @Summary Изменить премиум-флаг
// @Tags gallery
// @Accept json
// @Produce json
// @Param id path int true "ID элемента"
// @Param request body request.SetPremiumRequest true "Новое значение"
// @Success 200 {object} response.PremiumUpdatedResponse
// @Failure 400 {object} response.ErrorResponse "Неверный ID"
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/gallery/{id}/premium [patch]
func (r *Routers) SetPremium(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	var req request.SetPremiumRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(err)
	}
	if err := c.Validate(req); err != nil {
		return invalidRequest(err)
	}

	item, err := r.GalleryService.SetPremium(c.Request().Context(), middleware.AuthFrom(c), id, *req.IsPremium)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response.PremiumUpdatedResponse{
		Message:     "Premium status updated",
		UpdatedItem: item,
	})
}

// RemoveAllPremium godoc
// @Summary Снять премиум со всех элементов
// @Description Повторный вызов возвращает updatedCount = 0.
// @Tags gallery
// @Produce json
// @Success 200 {object} response.PremiumClearedResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /api/gallery/remove-premium [post]
func (r *Routers) RemoveAllPremium(c echo.Context) error {
	n, err := r.GalleryService.ClearAllPremium(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response.PremiumClearedResponse{
		Message:      "Premium status removed from all items",
		UpdatedCount: n,
	})
}

// DeleteItem godoc
// @Summary Удалить элемент галереи
// @Description Удаляет запись и, по возможности, файлы.
// @Tags gallery
// @Produce json
// @Param id path int true "ID элемента"
// @Success 200 {object} response.DeletedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/gallery/{id} [delete]
func (r *Routers) DeleteItem(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	item, err := r.GalleryService.Delete(c.Request().Context(), middleware.AuthFrom(c), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response.DeletedResponse{
		Message:     "Item deleted",
		DeletedItem: item,
	})
}

// UploadContent godoc
// @Summary Загрузка контента
// @Tags content
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Изображение (до 50MB)"
// @Param isPublic formData boolean false "Публичный доступ"
// @Success 201 {object} models.Media
// @Failure 400 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Failure 415 {object} response.ErrorResponse
// @Router /api/content/upload [post]
func (r *Routers) UploadContent(c echo.Context) error {
	isPublic, _ := strconv.ParseBool(c.FormValue("isPublic"))

	file, err := formFile(c, "file")
	if err != nil {
		return err
	}

	m, err := r.MediaService.UploadContent(c.Request().Context(), middleware.AuthFrom(c), file, isPublic)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, m)
}

// ListMyContent godoc
// @Summary Мой контент
// @Tags content
// @Produce json
// @Success 200 {array} models.Media
// @Router /api/content/mine [get]
func (r *Routers) ListMyContent(c echo.Context) error {
	items, err := r.MediaService.ListMine(c.Request().Context(), middleware.AuthFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

// GetContent godoc
// @Summary Получить контент
// @Description Публичный контент доступен всем, приватный только владельцу и администратору
// @Tags content
// @Produce json
// @Param id path string true "ID контента"
// @Success 200 {object} models.Media
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/content/{id} [get]
func (r *Routers) GetContent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperror.BadRequest(apperror.CodeInvalidID, "Invalid content ID")
	}

	m, err := r.MediaService.Get(c.Request().Context(), middleware.AuthFrom(c), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, m)
}

// MyProfile godoc
// @Summary Профиль автора
// @Tags creators
// @Produce json
// @Success 200 {object} models.CreatorProfile
// @Router /api/creators/me [get]
func (r *Routers) MyProfile(c echo.Context) error {
	profile, err := r.CreatorService.Profile(c.Request().Context(), middleware.AuthFrom(c).UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profile)
}

// UpdateMyProfile godoc
// @Summary Обновить профиль автора
// @Tags creators
// @Accept json
// @Produce json
// @Param request body request.UpdateProfileRequest true "Профиль"
// @Success 200 {object} models.CreatorProfile
// @Router /api/creators/me [put]
func (r *Routers) UpdateMyProfile(c echo.Context) error {
	var req request.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(err)
	}
	if err := c.Validate(req); err != nil {
		return invalidRequest(err)
	}

	profile, err := r.CreatorService.UpdateProfile(c.Request().Context(), middleware.AuthFrom(c).UserID, req.DisplayName, req.Bio, req.Categories)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profile)
}

// UploadPhoto godoc
// @Summary Загрузить фото профиля
// @Tags creators
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Фото"
// @Success 200 {object} models.CreatorProfile
// @Failure 400 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Failure 415 {object} response.ErrorResponse
// @Router /api/creators/me/photo [post]
func (r *Routers) UploadPhoto(c echo.Context) error {
	file, err := formFile(c, "photo")
	if err != nil {
		return err
	}

	profile, err := r.CreatorService.UploadPhoto(c.Request().Context(), middleware.AuthFrom(c).UserID, file)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profile)
}

// ListCreators godoc
// @Summary Список авторов для модерации
// @Tags admin
// @Produce json
// @Param status query string false "pending | approved | rejected"
// @Success 200 {array} models.CreatorProfile
// @Router /api/admin/creators [get]
func (r *Routers) ListCreators(c echo.Context) error {
	profiles, err := r.CreatorService.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profiles)
}

// ApproveCreator godoc
// @Summary Одобрить автора
// @Tags admin
// @Produce json
// @Param id path string true "UUID пользователя" format(uuid)
// @Success 200 {object} models.CreatorProfile
// @Failure 404 {object} response.ErrorResponse
// @Router /api/admin/creators/{id}/approve [post]
func (r *Routers) ApproveCreator(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	profile, err := r.CreatorService.Approve(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profile)
}

// RejectCreator godoc
// @Summary Отклонить автора
// @Tags admin
// @Produce json
// @Param id path string true "UUID пользователя" format(uuid)
// @Success 200 {object} models.CreatorProfile
// @Failure 404 {object} response.ErrorResponse
// @Router /api/admin/creators/{id}/reject [post]
func (r *Routers) RejectCreator(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	profile, err := r.CreatorService.Reject(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profile)
}

// Subscribe godoc
// @Summary Подписаться на автора
// @Description Оплата не проводится.
// @Tags subscriptions
// @Produce json
// @Param id path string true "UUID автора" format(uuid)
// @Success 201 {object} models.Subscription
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/creators/{id}/subscription [post]
func (r *Routers) Subscribe(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	sub, err := r.SubscriptionService.Subscribe(c.Request().Context(), middleware.AuthFrom(c), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, sub)
}

// Unsubscribe godoc
// @Summary Отменить подписку
// @Tags subscriptions
// @Produce json
// @Param id path string true "UUID автора" format(uuid)
// @Success 200 {object} models.Subscription
// @Failure 404 {object} response.ErrorResponse
// @Router /api/creators/{id}/subscription [delete]
func (r *Routers) Unsubscribe(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	sub, err := r.SubscriptionService.Cancel(c.Request().Context(), middleware.AuthFrom(c), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sub)
}

// ListSubscriptions godoc
// @Summary Мои подписки
// @Tags subscriptions
// @Produce json
// @Success 200 {array} models.Subscription
// @Router /api/subscriptions [get]
func (r *Routers) ListSubscriptions(c echo.Context) error {
	subs, err := r.SubscriptionService.List(c.Request().Context(), middleware.AuthFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, subs)
}

// Purchase godoc
// @Summary Купить премиум-элемент
// @Tags subscriptions
// @Produce json
// @Param id path int true "ID элемента"
// @Success 201 {object} models.Purchase
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Уже куплено"
// @Router /api/gallery/{id}/purchase [post]
func (r *Routers) Purchase(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	p, err := r.SubscriptionService.Purchase(c.Request().Context(), middleware.AuthFrom(c), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, p)
}

// CheckAccess godoc
// @Summary Проверка доступа к элементу
// @Tags subscriptions
// @Produce json
// @Param id path int true "ID элемента"
// @Success 200 {object} response.AccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/gallery/{id}/access [get]
func (r *Routers) CheckAccess(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	ok, err := r.SubscriptionService.CheckAccess(c.Request().Context(), middleware.AuthFrom(c), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response.AccessResponse{ItemID: id, HasAccess: ok})
}

// formFile returns a nil header when the field is missing so the processor
// can report it with its own error code. A body cut off by the size limit is
// reported as too large.
func formFile(c echo.Context, field string) (*multipart.FileHeader, error) {
	file, err := c.FormFile(field)
	if err == nil {
		return file, nil
	}
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}

	var (
		he  *echo.HTTPError
		mbe *http.MaxBytesError
	)
	if (errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge) || errors.As(err, &mbe) {
		return nil, apperror.FileTooLarge()
	}

	return nil, invalidRequest(err)
}

func itemID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest(apperror.CodeInvalidID, "Invalid item ID")
	}

	return id, nil
}

func userID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.BadRequest(apperror.CodeInvalidID, "Invalid user ID")
	}

	return id, nil
}
